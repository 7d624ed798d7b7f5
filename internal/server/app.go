// Package server initializes and runs the application: it wires the store
// manager, the session and account services, the GraphQL schema, and the
// HTTP server, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/vevey/vevey/internal/logging"
	"github.com/vevey/vevey/internal/server/auth"
	"github.com/vevey/vevey/internal/server/config"
	"github.com/vevey/vevey/internal/server/db"
	"github.com/vevey/vevey/internal/server/graph"
	"github.com/vevey/vevey/internal/server/httpapi"
	"github.com/vevey/vevey/internal/server/mail"
	"github.com/vevey/vevey/internal/server/records"
	"github.com/vevey/vevey/internal/server/sessions"
	"github.com/vevey/vevey/internal/server/users"
)

type App struct {
	config *config.Config
	logger logging.Logger
	stores db.StoreManager
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	// Without a DSN the app runs on the in-memory stores: nothing survives
	// a restart, but local development and smoke tests need no Postgres.
	var stores db.StoreManager
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, using in-memory stores")
		stores = db.NewInMemoryStoreManager()
	} else {
		var err error
		stores, err = db.NewPostgresStoreManager(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	sess := sessions.NewService(
		sessions.Config{
			AccessTTL:  c.AccessTokenValidityDuration,
			RefreshTTL: c.RefreshTokenValidityDuration,
		},
		auth.NewCodec([]byte(c.SecretKey)),
		stores.Sessions(),
		logger,
	)

	var mailer mail.Mailer
	if c.MailgunDomain != "" {
		mailer = mail.NewMailgunMailer(c.MailgunDomain, c.MailgunAPIKey, c.MailSender)
	} else {
		mailer = mail.NewLogMailer(logger)
	}

	userSvc := users.NewService(stores.Users(), sess, stores, mailer, logger)

	schema, err := graph.New(graph.Services{
		Sessions: sess,
		Users:    userSvc,
		Notes:    records.NewNotes(stores.Notes(), logger),
		Posts:    records.NewPosts(stores.Posts(), logger),
	})
	if err != nil {
		return nil, fmt.Errorf("schema init error: %w", err)
	}

	server := httpapi.NewServer(c.EndpointAddr, schema, sess, logger, c.RequestTimeout)

	return &App{config: c, logger: logger, stores: stores, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.stores.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
