package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trade-journal/internal/analytics"
	"trade-journal/internal/config"
	"trade-journal/internal/journal"
	"trade-journal/internal/logging"
	"trade-journal/internal/metrics"
	"trade-journal/internal/security"
	"trade-journal/internal/store"
	"trade-journal/internal/strategy"
	"trade-journal/internal/trades"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// DefaultUser owns records when neither --user nor TJ_USER is set.
const DefaultUser = "local"

// commandTimeout bounds a single CLI command's store work.
const commandTimeout = 30 * time.Second

// App holds the application dependencies.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	Store      store.DataStore
	Strategies *strategy.Service
	Trades     *trades.Service
	Journal    *journal.Service
	Analytics  *analytics.Engine
	UserID     string

	now func() time.Time
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		now:    time.Now,
	}

	rootCmd := &cobra.Command{
		Use:   "tradejournal",
		Short: "Trade Journal - trading journal and performance analytics",
		Long: `Trade Journal records your trades, strategies and daily journal, and
turns them into performance analytics: win rate, profit factor, drawdown,
equity curve, monthly trend, strategy comparison, psychology and a P&L heatmap.

Use 'tradejournal serve' to expose everything over the HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			app.UserID, _ = cmd.Flags().GetString("user")
			if app.UserID == "" {
				return fmt.Errorf("--user cannot be empty")
			}
			return nil
		},
	}

	defaultUser := os.Getenv("TJ_USER")
	if defaultUser == "" {
		defaultUser = DefaultUser
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trade-journal, env TJ_CONFIG_DIR)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("user", defaultUser, "user that owns the records (env TJ_USER)")

	addCoreCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addStrategyCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addAnalyticsCommands(rootCmd, app)
	addServeCommands(rootCmd, app)

	return rootCmd
}

// Open connects the configured store and builds the services on first use.
func (a *App) Open(ctx context.Context) error {
	if a.Store != nil {
		return nil
	}

	st, err := openStore(ctx, a.Config.Database, a.Logger)
	if err != nil {
		return err
	}
	a.Store = st

	a.Metrics = metrics.New()
	cache := strategy.NewListCache(a.Config.Cache.StrategyCapacity, a.Config.Cache.StrategyTTL, a.Metrics)
	a.Strategies = strategy.NewService(st, cache, a.Logger, a.Metrics)
	a.Trades = trades.NewService(st, a.Strategies, a.Logger, a.Metrics)
	a.Journal = journal.NewService(st, a.Logger)
	a.Analytics = analytics.NewEngine(st, a.Logger, a.Metrics, a.Config.Location())
	return nil
}

// Close releases the store if it was opened.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (store.DataStore, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		st, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connecting to %s: %w", security.MaskURI(cfg.MongoURI), err)
		}
		logger.Debug().Str("uri", security.MaskURI(cfg.MongoURI)).Str("database", cfg.MongoDatabase).Msg("MongoDB store initialized")
		return st, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		st, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("path", cfg.Path).Msg("SQLite store initialized")
		return st, nil
	}
}

// withStore opens the store for one command. The returned func cancels the
// command's context and closes the store.
func (a *App) withStore(cmd *cobra.Command) (context.Context, func(), error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	ctx = logging.WithLogger(ctx, logging.WithUser(a.Logger, a.UserID))
	if err := a.Open(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	return ctx, func() {
		cancel()
		if err := a.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close store")
		}
	}, nil
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newExamplesCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trade Journal v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			masked := maskedConfig(app.Config)
			if output.IsJSON() {
				return output.JSON(masked)
			}
			showConfig(output, masked)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			dir, _ := cmd.Flags().GetString("config")
			if dir == "" {
				dir = os.Getenv("TJ_CONFIG_DIR")
			}
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			if output.IsJSON() {
				output.JSON(map[string]string{"path": dir})
			} else {
				output.Println(dir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration, including the server settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			err := app.Config.Validate()
			if err == nil {
				err = app.Config.ValidateServer()
			}
			if err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

// maskedConfig returns a copy safe to print.
func maskedConfig(cfg *config.Config) config.Config {
	c := *cfg
	c.Server.JWTSecret = security.MaskCredential(c.Server.JWTSecret)
	c.Database.MongoURI = security.MaskURI(c.Database.MongoURI)
	return c
}

func showConfig(output *Output, cfg config.Config) {
	output.Bold("Database")
	output.Printf("  Driver:          %s\n", cfg.Database.Driver)
	if cfg.Database.Driver == config.DriverMongo {
		output.Printf("  URI:             %s\n", cfg.Database.MongoURI)
		output.Printf("  Database:        %s\n", cfg.Database.MongoDatabase)
	} else {
		output.Printf("  Path:            %s\n", cfg.Database.Path)
	}
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:         %s\n", cfg.Server.Address)
	output.Printf("  JWT Secret:      %s\n", cfg.Server.JWTSecret)
	output.Printf("  Rate Limit:      %.1f/s (burst %d)\n", cfg.Server.RateLimit, cfg.Server.RateBurst)
	output.Printf("  Origins:         %v\n", cfg.Server.AllowedOrigins)
	output.Println()

	output.Bold("Analytics")
	output.Printf("  Timezone:        %s\n", cfg.Analytics.Timezone)
	output.Printf("  Strategy Cache:  %d users, %s\n", cfg.Cache.StrategyCapacity, cfg.Cache.StrategyTTL)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %v\n", cfg.Logging.File)
}
