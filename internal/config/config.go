package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "PORTAL"

const (
	ModeTUI         = "tui"
	ModeInteractive = "interactive"
	ModeHeadless    = "headless"
	ModeMCP         = "mcp"
)

var modes = []string{ModeTUI, ModeInteractive, ModeHeadless, ModeMCP}

type Config struct {
	Mode           string
	SeedDBPath     string
	LogLevel       string
	DeliveredAfter time.Duration
	ReadAfter      time.Duration
	SessionName    string
}

// Load resolves configuration from, in increasing precedence: built-in
// defaults, an optional .env file, PORTAL_* environment variables and args.
func Load(args []string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("mode", ModeTUI)
	v.SetDefault("seed_db", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("delivered_after", time.Second)
	v.SetDefault("read_after", 2*time.Second)
	v.SetDefault("session_name", "student")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	cfg := &Config{}
	fs := flag.NewFlagSet("portal-messages", flag.ContinueOnError)
	fs.StringVar(&cfg.Mode, "mode", v.GetString("mode"), "Run mode: tui, interactive, headless, or mcp")
	fs.StringVar(&cfg.SeedDBPath, "seed-db", v.GetString("seed_db"), "SQLite seed catalogue (built-in samples when empty)")
	fs.StringVar(&cfg.LogLevel, "log-level", v.GetString("log_level"), "Log level: debug, info, warn, error")
	fs.DurationVar(&cfg.DeliveredAfter, "delivered-after", v.GetDuration("delivered_after"), "Delay before a reply shows as delivered")
	fs.DurationVar(&cfg.ReadAfter, "read-after", v.GetDuration("read_after"), "Delay before a reply shows as read")
	fs.StringVar(&cfg.SessionName, "session", v.GetString("session_name"), "Name recorded with this session's logs")

	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	known := false
	for _, m := range modes {
		if c.Mode == m {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown mode %q (want %s)", c.Mode, strings.Join(modes, ", "))
	}
	if c.DeliveredAfter <= 0 {
		return fmt.Errorf("delivered_after must be positive, got %s", c.DeliveredAfter)
	}
	if c.ReadAfter <= c.DeliveredAfter {
		return fmt.Errorf("read_after (%s) must be later than delivered_after (%s)", c.ReadAfter, c.DeliveredAfter)
	}
	return nil
}

// loadDotEnv reads PORTAL_ENV_FILE, or ./.env, when present. Variables already
// set in the environment win.
func loadDotEnv() error {
	path := os.Getenv(EnvPrefix + "_ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errors.Wrapf(err, "stat %s", path)
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	return nil
}
