package main

import (
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"github.com/passgate/passgate/adapters/events"
	"github.com/passgate/passgate/adapters/store"
	"github.com/passgate/passgate/adapters/tokenizer"
	"github.com/passgate/passgate/adapters/verifier"
	"github.com/passgate/passgate/internal/config"
	"github.com/passgate/passgate/ports"
	"github.com/passgate/passgate/service"
	transport "github.com/passgate/passgate/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	if cfg.Production() {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	wmLogger := watermill.NewSlogLogger(logger)

	// Redis backs the issuer denylist and cross-instance logout events.
	// Without it, both fall back to in-process implementations.
	var (
		denylist  ports.Store
		publisher message.Publisher
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to parse Redis URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			wmLogger,
		)
		if err != nil {
			logger.Error("failed to create Redis publisher", "error", err)
			os.Exit(1)
		}

		denylist = store.NewRedisStore(redisClient)
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		denylist = store.NewMemoryStore()
	}

	providerClient := verifier.NewClient(verifier.Config{
		BaseURL:   cfg.ProviderBaseURL,
		APISecret: cfg.ProviderSecret,
		Timeout:   cfg.ProviderTimeout,
		Logger:    logger,
	})

	sessions := service.NewSessionService(
		providerClient,
		tokenizer.NewJWTTokenizer([]byte(cfg.SigningSecret)),
		denylist,
		events.NewWatermillPublisher(publisher),
		service.Options{
			SessionTTL:       cfg.SessionTTL,
			StrictRevocation: cfg.StrictRevocation,
			Logger:           logger,
		},
	)

	flow := service.NewLoginFlow(providerClient, logger)

	cookies := transport.CookiePolicy{
		Name:   cfg.CookieName,
		Domain: cfg.CookieDomain,
		Secure: cfg.Production(),
		MaxAge: cfg.SessionTTL,
	}

	handlers := transport.NewSessionHandlers(sessions, flow, cookies, cfg.LoginRedirect, logger)
	router := transport.SetupRouter(sessions, handlers, cookies)

	logger.Info("starting server", "addr", cfg.ListenAddr, "strict_revocation", cfg.StrictRevocation)
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
