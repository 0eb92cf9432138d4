package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/legalease/legalease/internal/bus"
	"github.com/legalease/legalease/internal/engine"
	"github.com/legalease/legalease/internal/lifecycle"
	"github.com/legalease/legalease/internal/store"
)

var (
	cfgFile        string
	dbPath         string
	redisURL       string
	engineSettings string
	userID         string
	userEmail      string
	logLevel       string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "legalease",
	Short: "Consumer complaint intake and correspondence assistant",
	Long: `LegalEase turns a free-text consumer complaint into a structured,
trackable case: it classifies the complaint against a regulatory framework,
collects the facts the claim needs, drafts formal correspondence, and tracks
the company's response deadline with escalation support.

Features:
- AI-assisted complaint classification and claim drafting
- SQLite case store with append-only status history
- Response deadline tracking and escalation policy
- Claim correspondence delivery via Resend
- Redis Streams activity feed for downstream consumers`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.legalease.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/legalease.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis connection URL for the activity feed (empty disables)")
	rootCmd.PersistentFlags().StringVar(&engineSettings, "engine-settings", "./data/engine-settings.json", "Reasoning engine settings file")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "local", "Acting user id")
	rootCmd.PersistentFlags().StringVar(&userEmail, "email", "", "Acting user email, used as reply-to on sent claims")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, error)")

	// Bind flags to viper
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("engine.settings", rootCmd.PersistentFlags().Lookup("engine-settings"))
	viper.BindPFlag("user.id", rootCmd.PersistentFlags().Lookup("user"))
	viper.BindPFlag("user.email", rootCmd.PersistentFlags().Lookup("email"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".legalease" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".legalease")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Set defaults
	viper.SetDefault("database.path", "./data/legalease.db")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("engine.settings", "./data/engine-settings.json")
	viper.SetDefault("user.id", "local")
	viper.SetDefault("user.email", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("mail.from", "")
	viper.SetDefault("mail.endpoint", "")
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("redis.url"),
		},
		Engine: EngineConfig{
			Settings: viper.GetString("engine.settings"),
		},
		User: UserConfig{
			ID:    viper.GetString("user.id"),
			Email: viper.GetString("user.email"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
		},
		Mail: MailConfig{
			From:     viper.GetString("mail.from"),
			Endpoint: viper.GetString("mail.endpoint"),
		},
	}
}

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Engine   EngineConfig   `mapstructure:"engine"`
	User     UserConfig     `mapstructure:"user"`
	Log      LogConfig      `mapstructure:"log"`
	Mail     MailConfig     `mapstructure:"mail"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type EngineConfig struct {
	Settings string `mapstructure:"settings"`
}

type UserConfig struct {
	ID    string `mapstructure:"id"`
	Email string `mapstructure:"email"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MailConfig struct {
	From     string `mapstructure:"from"`
	Endpoint string `mapstructure:"endpoint"`
}

// newLogger builds a command-scoped logger honoring the configured level.
func newLogger(prefix string) *log.Logger {
	cfg := GetConfig()
	out := io.Writer(os.Stderr)
	flags := log.LstdFlags
	switch cfg.Log.Level {
	case "debug":
		flags |= log.Lshortfile
	case "error":
		out = io.Discard
	}
	return log.New(out, prefix, flags)
}

// runtime bundles the wired components a case command needs.
type runtime struct {
	store      *store.Store
	bus        bus.Bus
	controller *lifecycle.Controller
	session    *lifecycle.Session
	logger     *log.Logger
}

// newRuntime opens the store and wires the controller. The reasoning engine
// is only built for commands that invoke it, so read-only commands work
// without provider credentials.
func newRuntime(ctx context.Context, prefix string, needEngine bool) (*runtime, error) {
	config := GetConfig()
	logger := newLogger(prefix)

	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	var eng engine.Engine
	if needEngine {
		reloader, err := engine.NewReloader(ctx, config.Engine.Settings, logger)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to initialize reasoning engine: %w", err)
		}
		eng = reloader.Engine()
	}

	b := bus.NewBus(config.Redis.URL, logger)

	return &runtime{
		store:      st,
		bus:        b,
		controller: lifecycle.New(st, eng, b, logger),
		session:    &lifecycle.Session{UserID: config.User.ID, Email: config.User.Email},
		logger:     logger,
	}, nil
}

func (rt *runtime) Close() {
	rt.bus.Close()
	rt.store.Close()
}
