package cli

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"flashquiz/internal/config"
	"flashquiz/internal/domain"
	"flashquiz/internal/game"
	fileloader "flashquiz/internal/infra/file"
	"flashquiz/internal/infra/memory"
	pgloader "flashquiz/internal/infra/postgres"
	redisboard "flashquiz/internal/infra/redis"
	"flashquiz/internal/transport/tcp"
	"flashquiz/internal/transport/ws"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, *logLevel)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	logger := newLogger(logLevel)

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
		finalPort = "12345"
	}

	maxQuestions := cfg.QuestionsPerRound()
	bank, err := loadBank(ctx, cfg, maxQuestions)
	if err != nil {
		return err
	}
	logger.WithField("topics", bank.Topics()).Info("question bank loaded")

	var board game.Scoreboard = memory.NewLeaderboard()
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		board = redisboard.NewLeaderboard(client, board, ttl)
		logger.WithField("addr", cfg.Redis.Addr).Info("mirroring leaderboard to redis")
	}

	svc := game.NewService(bank, board, maxQuestions)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	tcpServer := tcp.NewServer(net.JoinHostPort(cfg.Server.Host, finalPort), svc, logger)
	g.Go(func() error {
		return tcpServer.Run(ctx)
	})

	if cfg.Server.WSPort != "" {
		wsHandler := ws.NewHandler(svc, logger)
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})
		mux.HandleFunc("/ws", wsHandler.ServeWS)

		httpServer := &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.WSPort),
			Handler:           mux,
			ReadHeaderTimeout: 15 * time.Second,
		}
		g.Go(func() error {
			logger.WithField("addr", httpServer.Addr).Info("websocket transport listening")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

// loadBank resolves the question bank source: Postgres when configured,
// otherwise the static questions file. Either way the bank is loaded and
// validated exactly once; a failure aborts startup.
func loadBank(ctx context.Context, cfg config.Config, maxQuestions int) (domain.Bank, error) {
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return pgloader.NewBankLoader(pool).LoadBank(ctx, maxQuestions)
	}

	path := cfg.Quiz.QuestionsFile
	if path == "" {
		path = "questions.json"
	}
	return fileloader.LoadBank(path, maxQuestions)
}
