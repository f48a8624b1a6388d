// Package config holds the typed runtime configuration decoded from viper.
package config

import (
	"time"

	"github.com/spf13/viper"
)

type Log struct {
	Level      string
	Format     string // console|json
	File       string // empty: stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Control struct {
	ReplyWait time.Duration
	Legacy    bool // controllers that do not echo correlation tokens
}

type Config struct {
	HTTPAddr  string
	DBDSN     string
	JWTSecret string
	Log       Log
	Control   Control
}

// FromViper decodes the effective configuration, applying defaults for every
// unset key.
func FromViper(v *viper.Viper) Config {
	v.SetDefault("http.listen", ":3000")
	v.SetDefault("db.dsn", "")
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("control.reply_wait", "5s")
	v.SetDefault("control.legacy", false)

	return Config{
		HTTPAddr:  v.GetString("http.listen"),
		DBDSN:     v.GetString("db.dsn"),
		JWTSecret: v.GetString("auth.jwt_secret"),
		Log: Log{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age"),
			Compress:   v.GetBool("log.compress"),
		},
		Control: Control{
			ReplyWait: v.GetDuration("control.reply_wait"),
			Legacy:    v.GetBool("control.legacy"),
		},
	}
}
