package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/srt-studio/backend/internal/api"
	"github.com/srt-studio/backend/internal/auth"
	"github.com/srt-studio/backend/internal/config"
	"github.com/srt-studio/backend/internal/db"
	"github.com/srt-studio/backend/internal/job"
	"github.com/srt-studio/backend/internal/pipeline"
	"github.com/srt-studio/backend/internal/storage"
	"github.com/srt-studio/backend/internal/subtitle/srt"
	"github.com/srt-studio/backend/internal/subtitle/translate"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg := config.Load()

	policy, err := srt.ParsePolicy(cfg.Translation.ParsePolicy)
	if err != nil {
		return err
	}

	// Ensure data directories exist
	for _, dir := range []string{cfg.DataPath, cfg.OutputPath, cfg.UploadPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer database.Close()

	// Ensure admin user exists
	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	jwtService := auth.NewJWTService(cfg.JWTSecret)

	registry := translate.NewRegistry(database, translate.Keys{
		OpenAI: cfg.Translation.OpenAIKey,
		Gemini: cfg.Translation.GeminiKey,
		DeepL:  cfg.Translation.DeepLKey,
	})
	for name, ok := range registry.Configured() {
		if ok {
			log.Printf("[translate] %s engine has an API key", name)
		}
	}

	sink := storage.NewFilesystemSink(cfg.OutputPath)
	svc := pipeline.NewService(pipeline.Config{
		Sink:     sink,
		Engines:  registry,
		Settings: database,
		Presets: func(id int64) (string, error) {
			p, err := database.GetTranslationPreset(id)
			if err != nil {
				return "", err
			}
			return p.Prompt, nil
		},
		Policy:        policy,
		SourceLang:    cfg.Translation.SourceLang,
		DefaultEngine: cfg.Translation.Engine,
		Concurrency:   cfg.Translation.Concurrency,
	})

	queue := job.NewJobQueue(database.DB())
	queue.RegisterHandler(job.JobTranslate, svc.HandleJob)

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Database: database,
		JWT:      jwtService,
		Queue:    queue,
		Pipeline: svc,
		Registry: registry,
		Sink:     sink,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	log.Printf("Starting server on %s", addr)
	log.Printf("Output path: %s (parse policy: %s)", cfg.OutputPath, policy)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		queue.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	queue.Stop()
	return nil
}
