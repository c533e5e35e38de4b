package main

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/propchain/gatekeeper/adapters/events"
	"github.com/propchain/gatekeeper/adapters/hasher"
	"github.com/propchain/gatekeeper/adapters/notifier"
	"github.com/propchain/gatekeeper/adapters/store"
	"github.com/propchain/gatekeeper/adapters/tokenizer"
	"github.com/propchain/gatekeeper/adapters/userstore"
	"github.com/propchain/gatekeeper/config"
	"github.com/propchain/gatekeeper/internal/eth"
	"github.com/propchain/gatekeeper/ports"
	"github.com/propchain/gatekeeper/service"
	transport "github.com/propchain/gatekeeper/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	users, err := userstore.NewGormUserStore(db)
	if err != nil {
		log.Fatalf("Failed to set up user store: %v", err)
	}

	logger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to create Redis publisher: %v", err)
	}

	jwtTokenizer := tokenizer.NewJWTTokenizer(
		[]byte(cfg.JWTAccessSecret),
		[]byte(cfg.JWTRefreshSecret),
	).WithTTLs(cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	tickets := store.NewRedisTicketStore(redisClient)
	bcryptHasher := hasher.NewBcryptHasher(0)
	eventPub := events.NewWatermillPublisher(publisher)

	var mailer ports.Notifier
	if cfg.SMTPHost != "" {
		mailer = notifier.NewGomailNotifier(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.MailFrom, cfg.FrontendURL,
		)
	} else {
		mailer = notifier.NewLogNotifier()
	}

	verifier := service.NewCredentialVerifier(users, bcryptHasher, eth.NewVerifier())
	issuer := service.NewTokenIssuer(jwtTokenizer, tickets, users, jwtTokenizer.RefreshTTL())
	authService := service.NewAuthService(users, tickets, verifier, issuer, bcryptHasher, mailer, eventPub)

	router := transport.SetupRouter(authService, jwtTokenizer)

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
