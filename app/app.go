// Package app builds the process context: every long lived dependency is
// created here at boot and released in Close on shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vnkhanh/roompush/config"
	"github.com/vnkhanh/roompush/controllers"
	"github.com/vnkhanh/roompush/middleware"
	"github.com/vnkhanh/roompush/push"
	"github.com/vnkhanh/roompush/realtime"
	"github.com/vnkhanh/roompush/utils"
)

type App struct {
	Config      *config.Config
	DB          *gorm.DB
	Tokens      *utils.TokenIssuer
	Dispatcher  *push.Dispatcher
	Hub         *realtime.Hub
	AuthLimiter *middleware.IPRateLimiter

	cancel context.CancelFunc
}

// Options lets callers (tests, mostly) swap the database or the push sender.
type Options struct {
	DB     *gorm.DB
	Sender push.Sender
}

// New wires the application from cfg. With a zero Options it opens the
// configured database, migrates it and delivers through web push.
func New(cfg *config.Config, opts Options) (*App, error) {
	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	db := opts.DB
	if db == nil {
		db, err = config.OpenDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := config.Migrate(db); err != nil {
			_ = config.CloseDB(db)
			return nil, err
		}
	}

	sender := opts.Sender
	if sender == nil {
		sender = push.NewWebPushSender(push.VAPID{
			PublicKey:  cfg.PublicVAPIDKey,
			PrivateKey: cfg.PrivateVAPIDKey,
			Subscriber: cfg.ContactEmail,
		}, cfg.PushTTL, &http.Client{Timeout: cfg.PushTimeout})
	}

	ctx, cancel := context.WithCancel(context.Background())
	rate := cfg.AuthRatePerMin
	if rate <= 0 {
		rate = 20
	}

	return &App{
		Config: cfg,
		DB:     db,
		Tokens: tokens,
		Dispatcher: push.NewDispatcher(sender, push.Options{
			Workers: cfg.PushWorkers,
			Timeout: cfg.PushTimeout,
			Retries: cfg.PushRetries,
		}),
		Hub:         realtime.NewHub(),
		AuthLimiter: middleware.NewIPRateLimiter(ctx, rate, rate/2+1, 10*time.Minute),
		cancel:      cancel,
	}, nil
}

// Handler returns the route handler bound to this process context.
func (a *App) Handler() *controllers.Handler {
	return &controllers.Handler{
		DB:             a.DB,
		Tokens:         a.Tokens,
		Push:           a.Dispatcher,
		Hub:            a.Hub,
		VAPIDPublicKey: a.Config.PublicVAPIDKey,
	}
}

// Close disconnects websocket clients, stops background work and closes the DB.
func (a *App) Close() error {
	a.Hub.Close()
	a.cancel()
	if err := config.CloseDB(a.DB); err != nil {
		log.Error().Err(err).Msg("close database")
		return err
	}
	return nil
}
