// Package store provides gorm-based persistence for the arcade platform.
// Every read and write goes through the caller's ScopeFilter so non-admins
// only ever touch rows of their own location.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/manglesh1/Pixelpulse-sub002/internal/apperr"
	"github.com/manglesh1/Pixelpulse-sub002/internal/pagination"
	"github.com/manglesh1/Pixelpulse-sub002/internal/server/models"
	"github.com/manglesh1/Pixelpulse-sub002/internal/tenant"
)

type Store struct {
	db    *gorm.DB
	rules *tenant.Rules
}

func New(db *gorm.DB, rules *tenant.Rules) *Store { return &Store{db: db, rules: rules} }

// scoped returns a query over the named model restricted to the caller's
// location per the model's ownership rule.
func (s *Store) scoped(ctx context.Context, tc tenant.Context, model string, dest any) (*gorm.DB, error) {
	rule, err := s.rules.Lookup(model)
	if err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(dest)
	return tenant.Scope(tc, rule).Apply(q), nil
}

// ResolveLocation returns the owning location of one record, identified by an
// arbitrary column (primary key or e.g. a wristband code). The second return
// is false when no such record exists. Field names come from startup route
// declarations, never from request input.
func (s *Store) ResolveLocation(ctx context.Context, model, idField string, idValue any) (uint, bool, error) {
	rule, err := s.rules.Lookup(model)
	if err != nil {
		return 0, false, err
	}
	// Rendered from the same ownership rule the list queries use, so the raw
	// and builder paths cannot drift apart.
	sql := fmt.Sprintf("SELECT %s FROM %s", rule.LocationColumn(""), rule.Table)
	if join := rule.JoinClause(""); join != "" {
		sql += " " + join
	}
	sql += fmt.Sprintf(" WHERE %s.%s = ? LIMIT 1", rule.Table, idField)
	var locs []uint
	if err := s.db.WithContext(ctx).Raw(sql, idValue).Scan(&locs).Error; err != nil {
		return 0, false, err
	}
	if len(locs) == 0 {
		return 0, false, nil
	}
	return locs[0], true, nil
}

// ---- games ----

func (s *Store) ListGames(ctx context.Context, tc tenant.Context, page pagination.Page) ([]models.Game, int64, error) {
	q, err := s.scoped(ctx, tc, "Game", &models.Game{})
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var arr []models.Game
	if err := page.Apply(q, "games.id").Find(&arr).Error; err != nil {
		return nil, 0, err
	}
	return arr, total, nil
}

func (s *Store) GetGame(ctx context.Context, tc tenant.Context, id uint) (*models.Game, error) {
	q, err := s.scoped(ctx, tc, "Game", &models.Game{})
	if err != nil {
		return nil, err
	}
	var g models.Game
	if err := q.Where("games.id = ?", id).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("game %d", id)
		}
		return nil, err
	}
	return &g, nil
}

func (s *Store) CreateGame(ctx context.Context, g *models.Game) error {
	return s.db.WithContext(ctx).Create(g).Error
}

func (s *Store) UpdateGame(ctx context.Context, g *models.Game) error {
	return s.db.WithContext(ctx).Save(g).Error
}

func (s *Store) DeleteGame(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Game{}, id).Error
}

// ---- variants ----

func (s *Store) ListVariants(ctx context.Context, tc tenant.Context, page pagination.Page) ([]models.GamesVariant, int64, error) {
	q, err := s.scoped(ctx, tc, "GamesVariant", &models.GamesVariant{})
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var arr []models.GamesVariant
	if err := page.Apply(q, "games_variants.id").Find(&arr).Error; err != nil {
		return nil, 0, err
	}
	return arr, total, nil
}

func (s *Store) GetVariantByCode(ctx context.Context, tc tenant.Context, code string) (*models.GamesVariant, error) {
	q, err := s.scoped(ctx, tc, "GamesVariant", &models.GamesVariant{})
	if err != nil {
		return nil, err
	}
	var v models.GamesVariant
	if err := q.Where("games_variants.variant_code = ?", code).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("variant %s", code)
		}
		return nil, err
	}
	return &v, nil
}

func (s *Store) CreateVariant(ctx context.Context, v *models.GamesVariant) error {
	return s.db.WithContext(ctx).Create(v).Error
}

// ---- players ----

func (s *Store) ListPlayers(ctx context.Context, tc tenant.Context, page pagination.Page) ([]models.Player, int64, error) {
	q, err := s.scoped(ctx, tc, "Player", &models.Player{})
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var arr []models.Player
	if err := page.Apply(q, "players.id").Find(&arr).Error; err != nil {
		return nil, 0, err
	}
	return arr, total, nil
}

func (s *Store) CreatePlayer(ctx context.Context, p *models.Player) error {
	return s.db.WithContext(ctx).Create(p).Error
}

// ---- scores ----

func (s *Store) ListScores(ctx context.Context, tc tenant.Context, page pagination.Page) ([]models.PlayerScore, int64, error) {
	q, err := s.scoped(ctx, tc, "PlayerScore", &models.PlayerScore{})
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var arr []models.PlayerScore
	if err := page.Apply(q, "player_scores.id").Find(&arr).Error; err != nil {
		return nil, 0, err
	}
	return arr, total, nil
}

func (s *Store) CreateScore(ctx context.Context, sc *models.PlayerScore) error {
	return s.db.WithContext(ctx).Create(sc).Error
}

// ---- wristbands ----

// LatestWristband returns the newest transaction for a code and the location
// that same row resolves to through its player. Codes get reissued, so the
// tenancy decision must be made on the row that is returned, never on another
// row sharing the code.
func (s *Store) LatestWristband(ctx context.Context, code string) (*models.WristbandTran, uint, error) {
	var wt models.WristbandTran
	err := s.db.WithContext(ctx).
		Where("wristband_code = ?", code).
		Order("id DESC").First(&wt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperr.NotFoundf("wristband %s", code)
		}
		return nil, 0, err
	}
	loc, found, err := s.ResolveLocation(ctx, "WristbandTran", "id", wt.ID)
	if err != nil {
		return nil, 0, err
	}
	if !found {
		return nil, 0, apperr.NotFoundf("wristband %s", code)
	}
	return &wt, loc, nil
}

// TopScore is one row of the hand-written leaderboard query.
type TopScore struct {
	PlayerID  uint   `json:"playerId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Points    int    `json:"points"`
}

// TopScores runs the leaderboard as raw SQL, consuming the same ScopeFilter
// the builder queries use (raw rendering path).
func (s *Store) TopScores(ctx context.Context, tc tenant.Context, limit int) ([]TopScore, error) {
	if limit < 1 || limit > pagination.MaxPageSize {
		limit = 10
	}
	rule, err := s.rules.Lookup("PlayerScore")
	if err != nil {
		return nil, err
	}
	join, where, args := tenant.Scope(tc, rule).Raw("ps")
	sql := `SELECT ps.player_id AS player_id, p.first_name, p.last_name, MAX(ps.points) AS points
FROM player_scores ps
INNER JOIN players p ON p.id = ps.player_id`
	if join != "" {
		sql += "\n" + join
	}
	if where != "" {
		sql += "\nWHERE " + where
	}
	sql += "\nGROUP BY ps.player_id, p.first_name, p.last_name\nORDER BY points DESC, player_id ASC\nLIMIT ?"
	args = append(args, limit)
	var out []TopScore
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
