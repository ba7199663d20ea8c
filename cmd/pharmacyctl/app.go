package main

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/pharmacy-backoffice/internal/apitest"
	"github.com/angelmondragon/pharmacy-backoffice/internal/session"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/config"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/metrics"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/money"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/redis"
)

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// app holds the dependencies shared by every command.
type app struct {
	cfg       *config.Config
	logg      *logger.Logger
	io        streams
	registry  *prometheus.Registry
	tokens    session.TokenStore
	client    *pharmacyapi.Client
	formatter money.Formatter
	demo      bool
	closers   []func() error
}

func bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger, s streams, demo bool) (*app, error) {
	a := &app{
		cfg:       cfg,
		logg:      logg,
		io:        s,
		registry:  prometheus.NewRegistry(),
		formatter: money.NewFormatter(cfg.Locale.CurrencySymbol),
		demo:      demo,
	}

	if demo {
		srv := apitest.NewServer(apitest.WithLogger(logg), apitest.WithTokenHeader(cfg.API.TokenHeader))
		a.closers = append(a.closers, func() error { srv.Close(); return nil })
		cfg.API.BaseURL = srv.URL
		a.tokens = session.NewMemoryStore("")
		logg.Info(ctx, "demo api listening on "+srv.URL)
	} else {
		tokens, err := a.tokenStore(ctx)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.tokens = tokens
	}

	client, err := pharmacyapi.NewClientFromConfig(cfg.API,
		pharmacyapi.WithTokenSource(session.StoreTokens(a.tokens)),
		pharmacyapi.WithLogger(logg),
		pharmacyapi.WithMetrics(metrics.NewAPIMetrics(a.registry)),
	)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.client = client
	return a, nil
}

// tokenStore shares the token through Redis when one is configured and
// falls back to a file in the user's home otherwise.
func (a *app) tokenStore(ctx context.Context) (session.TokenStore, error) {
	if !a.cfg.Redis.Enabled() {
		return session.NewFileStore(a.cfg.Session.TokenFile)
	}
	client, err := redis.New(ctx, a.cfg.Redis, a.logg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return session.NewRedisStore(client, a.cfg.Session.Terminal, a.cfg.Session.TTL)
}

// notifier prints to stdout and mirrors every notification to the log.
func (a *app) notifier() notify.Notifier {
	return notify.Multi(notify.NewWriterNotifier(a.io.out), notify.NewLogNotifier(a.logg))
}

func (a *app) session(n notify.Notifier) (*session.Session, error) {
	return session.New(a.client, a.tokens, session.WithNotifier(n), session.WithLogger(a.logg))
}

func (a *app) close(ctx context.Context) {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	if err != nil {
		a.logg.Error(ctx, "shutdown incomplete", err)
	}
}
