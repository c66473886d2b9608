package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"guestbook/config"
	"guestbook/internal/adapters/email"
	"guestbook/internal/adapters/queue"
	"guestbook/internal/adapters/storage"
	"guestbook/internal/services"
)

func main() {
	logger := config.NewLogger("worker")
	if err := run(logger); err != nil {
		logger.Error("worker stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretAccessKey,
			ConfigSet:       cfg.Email.SESConfigSet,
		},
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	objects, err := storage.NewS3Store(storage.Config{
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		return err
	}

	handlers := &queue.Handlers{
		Email:   services.NewEmailService(mailer, renderer, logger),
		Storage: objects,
		Logger:  logger,
	}
	mux := asynq.NewServeMux()
	handlers.Register(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: 10,
			Queues:      queue.Queues,
			Logger:      queue.NewLogger(logger),
		},
	)
	logger.Info("starting worker", "env", cfg.Environment, "mail_provider", cfg.Email.Provider)
	// Run blocks until SIGTERM or SIGINT and then drains in-flight tasks.
	return srv.Run(mux)
}
