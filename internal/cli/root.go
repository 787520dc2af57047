package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rustyeddy/tradeplan/config"
	"github.com/rustyeddy/tradeplan/internal/logging"
	"github.com/rustyeddy/tradeplan/journal"
)

// defaultConfigPath is read when present and no --config is given.
const defaultConfigPath = "tradeplan.yaml"

// RootConfig holds the persistent flags.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
	EnvFile    string
}

// app is what every subcommand runs against once the root has loaded
// configuration and logging.
type app struct {
	flags RootConfig
	v     *viper.Viper

	cfg       *config.Config
	log       zerolog.Logger
	logCloser io.Closer
	now       func() time.Time
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{
		v:         viper.New(),
		log:       zerolog.Nop(),
		logCloser: nopCloser{},
		now:       time.Now,
	})
}

func newRootCmd(a *app) *cobra.Command {

	cmd := &cobra.Command{
		Use:           "tradeplan",
		Short:         "tradeplan: position sizing, TP planning and funded-account bookkeeping",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&a.flags.ConfigPath, "config", "", "Path to config file (default ./"+defaultConfigPath+" if present)")
	cmd.PersistentFlags().StringVar(&a.flags.DBPath, "db", "", "SQLite journal database (overrides journal.db_path)")
	cmd.PersistentFlags().StringVar(&a.flags.LogLevel, "log-level", "", "Log level: debug|info|warn|error (overrides log.level)")
	cmd.PersistentFlags().StringVar(&a.flags.EnvFile, "env-file", ".env", "Environment file loaded before flags are resolved")

	a.v.SetEnvPrefix("TRADEPLAN")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	for _, name := range []string{"config", "db", "log-level"} {
		_ = a.v.BindPFlag(name, cmd.PersistentFlags().Lookup(name))
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return a.logCloser.Close()
	}

	cmd.AddCommand(
		newPlanCmd(a),
		newTradeCmd(a),
		newLogCmd(a),
		newProgressCmd(a),
		newJournalCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := loadEnvFile(a.flags.EnvFile); err != nil {
		return err
	}

	cfg := config.Default()
	path := a.v.GetString("config")
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if db := a.v.GetString("db"); db != "" {
		cfg.Journal.DBPath = db
	}
	if lvl := a.v.GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	a.cfg = cfg

	log, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	a.log = log.With().Str("cmd", cmd.Name()).Logger()
	a.logCloser = closer
	a.log.Debug().Str("config", path).Str("db", cfg.Journal.DBPath).Msg("configured")
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (a *app) openSQLite() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(a.cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

// openJournal returns the write side for closed trades: the local SQLite
// store, teed to CSV files or Postgres when configured. Closing it closes
// local too.
func (a *app) openJournal(ctx context.Context, local *journal.SQLite) (journal.Journal, error) {
	switch a.cfg.Journal.Type {
	case "csv":
		c, err := journal.NewCSV(a.cfg.Journal.TradesFile, a.cfg.Journal.EquityFile)
		if err != nil {
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		return journal.Tee(local, c), nil
	case "postgres":
		p, err := journal.NewPostgres(ctx, a.cfg.Journal.DSN)
		if err != nil {
			return nil, err
		}
		return journal.Tee(local, p), nil
	default:
		return local, nil
	}
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
