package main

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meeting-notifier/internal/api"
	"meeting-notifier/internal/config"
	"meeting-notifier/internal/db"
	"meeting-notifier/internal/gemini"
	"meeting-notifier/internal/logger"
	"meeting-notifier/internal/mailer"
	natsclient "meeting-notifier/internal/nats"
	"meeting-notifier/internal/summary"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func main() {
	if err := run(); err != nil {
		log := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
		log.Fatal().Err(err).Msg("meeting-notifier stopped")
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	if envErr != nil {
		log.Warn().Msg(".env file not found, reading configuration from the environment")
	}

	tracer.Start(tracer.WithService(cfg.DDService), tracer.WithEnv(cfg.DDEnv))
	defer tracer.Stop()

	var backend summary.Backend
	if cfg.GeminiAPIKey != "" {
		backend = gemini.NewClient(gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		}, log)
	} else {
		log.Warn().Msg("GEMINI_API_KEY is not set, summaries will be placeholders")
	}
	generator := summary.NewGenerator(backend, log)

	transport, err := cfg.MailTransport()
	if err != nil {
		return err
	}
	from := mail.Address{Name: cfg.MailFromName, Address: cfg.FromAddress()}
	dispatcher := mailer.NewDispatcher(transport, from, log)

	recorders, cleanup := setupRecorders(cfg, log)
	defer cleanup()

	handler := api.NewHandler(generator, dispatcher, cfg.SubjectPrefix, log, recorders...)
	e := api.NewServer(handler, cfg.MaxBodySize)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("AI Summary Service running")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}

// setupRecorders connects the optional audit log and event stream.
// Either one failing to come up only disables it.
func setupRecorders(cfg *config.Config, log zerolog.Logger) ([]api.Recorder, func()) {
	var recorders []api.Recorder
	var closers []func()

	if cfg.DBDSN != "" {
		client, err := db.NewClient(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			log.Error().Err(err).Msg("dispatch log disabled")
		} else if err := client.Migrate(context.Background(), log); err != nil {
			log.Error().Err(err).Msg("dispatch log disabled")
			client.Close()
		} else {
			recorders = append(recorders, client)
			closers = append(closers, func() { client.Close() })
		}
	}

	if cfg.NATSURL != "" {
		nc, js, err := natsclient.Setup(cfg.NATSURL, log)
		if err != nil {
			log.Error().Err(err).Msg("outcome events disabled")
		} else {
			recorders = append(recorders, natsclient.NewPublisher(js))
			closers = append(closers, nc.Close)
		}
	}

	return recorders, func() {
		for _, c := range closers {
			c()
		}
	}
}
