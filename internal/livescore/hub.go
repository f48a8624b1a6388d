// Package livescore streams score/timer/life state from the game runtime to
// connected kiosk displays. The runtime owns the state; kiosks mirror it.
package livescore

import (
	"encoding/json"
	"log/slog"
)

// State is one update from the game runtime. Fields are pointers/slices so a
// partial update carries only what changed; receivers keep previous values
// for omitted fields.
type State struct {
	GameType  *string  `json:"gameType,omitempty"` // comp|multi
	Players   []string `json:"players,omitempty"`
	Scores    []int    `json:"scores,omitempty"` // aligned by index with Players
	TimerMs   *int     `json:"timerMs,omitempty"`
	Lives     *int     `json:"lives,omitempty"`
	Level     *int     `json:"level,omitempty"`
	HideTimer *bool    `json:"hideTimer,omitempty"`
}

// merge applies the present fields of upd onto s.
func (s *State) merge(upd State) {
	if upd.GameType != nil {
		s.GameType = upd.GameType
	}
	if upd.Players != nil {
		s.Players = upd.Players
	}
	if upd.Scores != nil {
		s.Scores = upd.Scores
	}
	if upd.TimerMs != nil {
		s.TimerMs = upd.TimerMs
	}
	if upd.Lives != nil {
		s.Lives = upd.Lives
	}
	if upd.Level != nil {
		s.Level = upd.Level
	}
	if upd.HideTimer != nil {
		s.HideTimer = upd.HideTimer
	}
}

// subscriber buffer; a kiosk that falls this far behind is dropped rather
// than allowed to stall the hub.
const subscriberBuffer = 16

// Subscriber is one connected kiosk. Messages arrive on C; the channel closes
// when the hub drops or unsubscribes it.
type Subscriber struct {
	ch chan []byte
}

func (s *Subscriber) C() <-chan []byte { return s.ch }

// Hub fans runtime updates out to every connected kiosk. A single goroutine
// owns the subscriber set and the retained state, so registration, removal
// and broadcast are totally ordered and no kiosk can observe a partial
// broadcast. The hub retains the merged last-known state and snapshots it to
// each new subscriber on connect (deliberate choice: kiosks render something
// meaningful immediately instead of waiting for the next update).
type Hub struct {
	register   chan *Subscriber
	unregister chan *Subscriber
	updates    chan State
	done       chan struct{}
}

func NewHub() *Hub {
	h := &Hub{
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		updates:    make(chan State, 8),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) Close() { close(h.done) }

// Subscribe attaches a new kiosk; it immediately receives the last-known
// state when one exists.
func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{ch: make(chan []byte, subscriberBuffer)}
	select {
	case h.register <- s:
	case <-h.done:
		close(s.ch)
	}
	return s
}

// Unsubscribe detaches a kiosk. Safe to call after the hub dropped it.
func (h *Hub) Unsubscribe(s *Subscriber) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Broadcast pushes one authoritative update to all connected kiosks.
func (h *Hub) Broadcast(upd State) {
	select {
	case h.updates <- upd:
	case <-h.done:
	}
}

// Publish accepts a raw JSON update from the game runtime. Malformed input is
// logged and dropped; it never takes the hub down.
func (h *Hub) Publish(raw []byte) {
	var upd State
	if err := json.Unmarshal(raw, &upd); err != nil {
		slog.Warn("dropping malformed live state update", "err", err)
		return
	}
	h.Broadcast(upd)
}

func (h *Hub) run() {
	subs := map[*Subscriber]struct{}{}
	var last State
	var hasState bool
	for {
		select {
		case <-h.done:
			for s := range subs {
				close(s.ch)
			}
			return
		case s := <-h.register:
			subs[s] = struct{}{}
			if hasState {
				if msg, err := json.Marshal(last); err == nil {
					s.ch <- msg
				}
			}
		case s := <-h.unregister:
			if _, ok := subs[s]; ok {
				delete(subs, s)
				close(s.ch)
			}
		case upd := <-h.updates:
			last.merge(upd)
			hasState = true
			msg, err := json.Marshal(upd)
			if err != nil {
				slog.Warn("dropping unencodable live state update", "err", err)
				continue
			}
			for s := range subs {
				select {
				case s.ch <- msg:
				default:
					// kiosk stopped draining; cut it loose
					delete(subs, s)
					close(s.ch)
					slog.Warn("dropped slow live score subscriber")
				}
			}
		}
	}
}
