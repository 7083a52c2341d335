// Package main is the entry point for the CFP board API server: talk
// submissions, review ratings, labels, and the conference schedule grid.
//
// @title CFP Board API
// @version 1.0
// @description Conference CFP backend: talk lifecycle, reviewer ratings, labels, and schedule management.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"database/sql"
	"net/http"
	"os"

	_ "github.com/lib/pq"

	"cfpboard/config"
	authadapter "cfpboard/internal/adapters/auth"
	"cfpboard/internal/adapters/email"
	"cfpboard/internal/adapters/webhook"
	httpdelivery "cfpboard/internal/delivery/http"
	"cfpboard/internal/delivery/http/controllers"
	"cfpboard/internal/delivery/http/middleware"
	"cfpboard/internal/domain"
	"cfpboard/internal/repository/postgres"
	"cfpboard/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	talkRepo := postgres.NewTalkRepository(db)
	ratingRepo := postgres.NewRatingRepository(db)
	labelRepo := postgres.NewLabelRepository(db)
	conferenceRepo := postgres.NewConferenceRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)

	// Adapters
	hasher := authadapter.NewBcryptHasher(cfg.BcryptCost)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)
	renderer := email.NewTemplateRenderer()
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	var transitionWebhook domain.TransitionWebhook
	if cfg.TransitionWebhookURL != "" {
		transitionWebhook = webhook.NewHTTPClient(nil, cfg.TransitionWebhookURL)
	}

	// Services
	publisher := services.NewTransitionDispatcher(talkRepo, userRepo, mailer, renderer, transitionWebhook, cfg.ContextTimeout)
	authService := services.NewAuthService(userRepo, roleRepo, hasher, issuer, cfg.JWTExpiry)
	talkService := services.NewTalkService(talkRepo, publisher, cfg.ContextTimeout)
	ratingService := services.NewRatingService(ratingRepo, talkRepo, cfg.ContextTimeout)
	labelService := services.NewLabelService(labelRepo, talkRepo, cfg.ContextTimeout)
	conferenceService := services.NewConferenceService(conferenceRepo, cfg.ContextTimeout)
	scheduleService := services.NewScheduleService(scheduleRepo, conferenceRepo, cfg.ContextTimeout)

	// HTTP delivery
	mux := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Logger:     logger,
		Verifier:   verifier,
		Auth:       controllers.NewAuthController(logger, authService),
		Talk:       controllers.NewTalkController(logger, talkService),
		Rating:     controllers.NewRatingController(logger, ratingService),
		Label:      controllers.NewLabelController(logger, labelService),
		Conference: controllers.NewConferenceController(logger, conferenceService),
		Schedule:   controllers.NewScheduleController(logger, scheduleService),
	})

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	addr := ":" + cfg.Port
	logger.Info("starting server", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
