package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, closeStore, err := newStateStore(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStore()

	source := newTriviaSource(cfg)
	categories := newCategoryRepository(cfg, redisClient, source)

	auth, err := app.NewAuthStore(ctx, store)
	if err != nil {
		return err
	}
	service := app.NewQuizService(source, categories, store, app.ServiceConfig{
		SecondsPerQuestion: config.Int(cfg.Quiz.SecondsPerQuestion, app.DefaultSecondsPerQuestion),
		Tick:               config.Duration(cfg.Quiz.Tick, time.Second),
	})
	defer service.Close()
	if err := service.Restore(ctx); err != nil {
		return err
	}

	api := transport.NewAPI(service, auth)
	ws := transport.NewWSHandler(service, transport.CheckOrigin(cfg.Server.AllowedOrigins))
	router := transport.NewRouter(api, ws, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
