// Package servercmd implements the `pixelpulse server` command: load config,
// set up logging, open the database and serve until signalled.
package servercmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	jwt "github.com/manglesh1/Pixelpulse-sub002/internal/auth/token"
	common "github.com/manglesh1/Pixelpulse-sub002/internal/cli/common"
	"github.com/manglesh1/Pixelpulse-sub002/internal/config"
	"github.com/manglesh1/Pixelpulse-sub002/internal/db"
	"github.com/manglesh1/Pixelpulse-sub002/internal/gamecontrol"
	"github.com/manglesh1/Pixelpulse-sub002/internal/livescore"
	httpserver "github.com/manglesh1/Pixelpulse-sub002/internal/server/http"
	"github.com/manglesh1/Pixelpulse-sub002/internal/server/models"
	"github.com/manglesh1/Pixelpulse-sub002/internal/server/store"
)

// New returns the `pixelpulse server` command.
func New() *cobra.Command {
	var cfgFile string
	var includes []string
	var listen string
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the Pixelpulse backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.LoadWithIncludes(cfgFile, includes)
			if err != nil {
				return err
			}
			v.SetEnvPrefix("PIXELPULSE")
			v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
			v.AutomaticEnv()

			cfg := config.FromViper(v)
			if listen != "" {
				cfg.HTTPAddr = listen
			}
			common.SetupLoggerWithFile(cfg.Log.Level, cfg.Log.Format, cfg.Log.File,
				cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, cfg.Log.Compress)
			if cfgFile != "" {
				// live log-level retuning on config edits
				v.OnConfigChange(func(fsnotify.Event) {
					common.SetLevel(v.GetString("log.level"))
					slog.Info("config reloaded", "log_level", v.GetString("log.level"))
				})
				v.WatchConfig()
			}

			gdb, err := db.Open(cfg.DBDSN)
			if err != nil {
				return err
			}
			if err := models.AutoMigrate(gdb); err != nil {
				return err
			}

			control, err := gamecontrol.New(gamecontrol.Options{
				ReplyWait: cfg.Control.ReplyWait,
				Legacy:    cfg.Control.Legacy,
			})
			if err != nil {
				return err
			}
			defer control.Close()
			hub := livescore.NewHub()
			defer hub.Close()

			srv := httpserver.New(
				store.New(gdb, models.Ownership()),
				jwt.NewManager(cfg.JWTSecret),
				control,
				hub,
			)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Run(cfg.HTTPAddr) }()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case s := <-sig:
				slog.Info("shutting down", "signal", s.String())
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.Flags().StringSliceVar(&includes, "include", nil, "extra config files merged in order")
	cmd.Flags().StringVar(&listen, "listen", "", "override http listen address")
	return cmd
}
