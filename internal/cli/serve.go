package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edulearn-engine/internal/app"
	"edulearn-engine/internal/catalog"
	"edulearn-engine/internal/config"
	"edulearn-engine/internal/generator"
	"edulearn-engine/internal/infra/memory"
	"edulearn-engine/internal/infra/postgres"
	redisstore "edulearn-engine/internal/infra/redis"
	"edulearn-engine/internal/profile"
	"edulearn-engine/internal/scoring"
	transport "edulearn-engine/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCmd builds the CLI subcommand to start the engine server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz and progress engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	quizExpiry := config.TTLDuration(cfg.Quiz.Expiry, 24*time.Hour)

	var sets app.SetStore = memory.NewSetStore(quizExpiry)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sets = redisstore.NewSetStore(client, quizExpiry)
		log.Info("question sets stored in redis", zap.String("addr", cfg.Redis.Addr))
	}

	var ledger app.Ledger = memory.NewLedger()
	var badges app.BadgeStore = memory.NewBadgeStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		ledger = postgres.NewLedger(pool)
		badges = postgres.NewBadgeStore(pool)
		log.Info("ledger stored in postgres")
	}

	var supplier generator.Supplier = generator.NewStaticSupplier()
	if cfg.Generator.Provider == "openai" {
		supplier, err = generator.NewOpenAISupplier(generator.OpenAIConfig{
			APIKey:  cfg.Generator.OpenAI.APIKey,
			BaseURL: cfg.Generator.OpenAI.BaseURL,
			Model:   cfg.Generator.OpenAI.Model,
		})
		if err != nil {
			return err
		}
		log.Info("question generation via openai", zap.String("model", cfg.Generator.OpenAI.Model))
	}

	engine := app.NewEngine(sets, ledger, badges,
		generator.NewService(supplier, log),
		engineOptions(cfg), log)

	modules := catalog.NewCache(catalog.NewStaticLoader(),
		config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute))

	handler := transport.NewHandler(engine, modules, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting engine", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down")
	case <-ctx.Done():
		log.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// engineOptions translates config into engine policy, leaving zero values to
// the engine's documented defaults.
func engineOptions(cfg config.Config) app.Options {
	opts := app.Options{
		LevelK:       cfg.Leveling.K,
		MaxQuestions: cfg.Quiz.MaxQuestions,
	}
	if cfg.Scoring.XPPerCorrect > 0 || len(cfg.Scoring.Tiers) > 0 {
		policy := scoring.Policy{
			XPPerCorrect: cfg.Scoring.XPPerCorrect,
			ModuleXPDiv:  cfg.Scoring.ModuleXPDiv,
		}
		for _, t := range cfg.Scoring.Tiers {
			policy.Tiers = append(policy.Tiers, scoring.Tier{MinPercent: t.MinPercent, Bonus: t.Bonus})
		}
		opts.Policy = policy
	}
	if cfg.Profile.StrengthMin > 0 || cfg.Profile.WeaknessMax > 0 {
		opts.Thresholds = profile.Thresholds{
			StrengthMin: cfg.Profile.StrengthMin,
			WeaknessMax: cfg.Profile.WeaknessMax,
		}
	}
	return opts
}
