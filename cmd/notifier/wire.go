package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"vaccine_slot_notifier/internal/app"
	"vaccine_slot_notifier/internal/domain/cooldown"
	"vaccine_slot_notifier/internal/domain/notifier"
	"vaccine_slot_notifier/internal/domain/slot"
	"vaccine_slot_notifier/internal/infra/cache"
	"vaccine_slot_notifier/internal/infra/config"
	"vaccine_slot_notifier/internal/infra/console"
	idb "vaccine_slot_notifier/internal/infra/database"
	"vaccine_slot_notifier/internal/infra/filestore"
	"vaccine_slot_notifier/internal/infra/line"
	"vaccine_slot_notifier/internal/infra/logger"
	"vaccine_slot_notifier/internal/infra/sciseed"
	"vaccine_slot_notifier/internal/infra/telegram"

	"github.com/sirupsen/logrus"
)

type dependencies struct {
	cfg     *config.AppConfig
	log     *logrus.Entry
	service *app.SlotNotificationService
	closers []func() error
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.log.WithError(err).Warn("Error while releasing resources")
		}
	}
}

// setup loads configuration and builds the service graph. Configuration
// errors surface before any network connection is attempted.
func setup(ctx context.Context, opts *rootOptions) (*dependencies, error) {
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}

	log := logrus.NewEntry(logger.New(os.Stdout, cfg.LogLevel, cfg.Environment)).
		WithField("organization_id", cfg.OrganizationID)
	log.WithFields(logrus.Fields{
		"environment":      cfg.Environment,
		"notifier":         cfg.Notifier,
		"cooldown_backend": cfg.CooldownBackend,
		"dry_run":          opts.dryRun,
	}).Info("Configuration loaded")

	deps := &dependencies{cfg: cfg, log: log}
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	source, err := sciseed.NewClient(httpClient, cfg.SciseedBaseURL, cfg.OrganizationID, cfg.SciseedItemID, slot.JST)
	if err != nil {
		return nil, err
	}

	n, err := newNotifier(cfg, opts.dryRun, httpClient, log)
	if err != nil {
		return nil, err
	}

	store, err := newCooldownStore(ctx, cfg, deps)
	if err != nil {
		deps.Close()
		return nil, err
	}

	tracker := cooldown.NewTracker(store, slot.JST, log)
	deps.service = app.NewSlotNotificationService(source, n, tracker, app.ServiceOptions{
		LoginURL:       cfg.LoginURL,
		CooldownWindow: cfg.CooldownWindow,
		SearchWindow:   cfg.SearchWindow,
	}, log)
	return deps, nil
}

func newNotifier(cfg *config.AppConfig, dryRun bool, httpClient *http.Client, log *logrus.Entry) (notifier.Notifier, error) {
	if dryRun {
		return console.NewDryRunNotifier(log), nil
	}
	switch cfg.Notifier {
	case config.NotifierTelegram:
		tg, err := telegram.NewTelebotNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		return tg, nil
	case config.NotifierConsole:
		return console.NewDryRunNotifier(log), nil
	default:
		return line.NewBroadcastClient(httpClient, cfg.LineEndpoint, cfg.LineAccessToken), nil
	}
}

func newCooldownStore(ctx context.Context, cfg *config.AppConfig, deps *dependencies) (cooldown.Store, error) {
	switch cfg.CooldownBackend {
	case config.CooldownBackendPostgres:
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, db.Close)
		repo := idb.NewPostgresCooldownRepository(db, cfg.OrganizationID)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case config.CooldownBackendRedis:
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, client.Close)
		return cache.NewRedisCooldownStore(client, cfg.OrganizationID), nil
	case config.CooldownBackendMemory:
		deps.log.Warn("In-memory cooldown only survives within one process; use it with the daemon command")
		return cooldown.NewMemoryStore(), nil
	default:
		return filestore.NewCooldownStore(cfg.CooldownFile), nil
	}
}
