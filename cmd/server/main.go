package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hellotonatural/jeeves-backend/internal/config"
	"github.com/hellotonatural/jeeves-backend/internal/db"
	"github.com/hellotonatural/jeeves-backend/internal/draft"
	"github.com/hellotonatural/jeeves-backend/internal/email"
	"github.com/hellotonatural/jeeves-backend/internal/handler"
	"github.com/hellotonatural/jeeves-backend/internal/queue"
	"github.com/hellotonatural/jeeves-backend/internal/repository"
	"github.com/hellotonatural/jeeves-backend/internal/scheduler"
	"github.com/hellotonatural/jeeves-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, relying on OS environment variables")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.WithField("service", "jeeves-server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	conn, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := db.Migrate(conn, log); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	influencerRepo := &repository.InfluencerRepository{DB: conn.DB}
	campaignRepo := &repository.CampaignRepository{DB: conn.DB}
	threadRepo := &repository.ThreadRepository{DB: conn.DB}
	messageRepo := &repository.MessageRepository{DB: conn.DB}

	threadService := &service.ThreadService{
		Threads:     threadRepo,
		Messages:    messageRepo,
		Campaigns:   campaignRepo,
		Influencers: influencerRepo,
	}

	generator := draft.NewGenerator(cfg.LLMMode, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	provider, err := email.NewProvider(cfg.EmailProvider, cfg.SendGridAPIKey, cfg.DryRun, cfg.TestEmail)
	if err != nil {
		log.WithError(err).Fatal("email provider setup failed")
	}
	sender := email.Sender{FromEmail: cfg.FromEmail, FromName: cfg.FromName, ReplyTo: cfg.ReplyTo}

	jobs := &scheduler.Jobs{
		Threads:     threadRepo,
		Messages:    messageRepo,
		Influencers: influencerRepo,
		Campaigns:   campaignRepo,
		Drafts:      generator,
		Email:       provider,
		Sender:      sender,
		Log:         log,
	}

	// The publisher is optional; without a broker the job endpoints still
	// run synchronously.
	var publisher *queue.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = queue.NewPublisher(cfg.AMQPURL)
		if err != nil {
			log.WithError(err).Warn("queue unavailable, async job dispatch disabled")
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	router := handler.NewRouter(handler.Handlers{
		Influencers: &handler.InfluencerHandler{Repo: influencerRepo},
		Campaigns:   &handler.CampaignHandler{Repo: campaignRepo},
		Threads: &handler.ThreadHandler{
			Service:            threadService,
			Threads:            threadRepo,
			Messages:           messageRepo,
			AllowTestEndpoints: cfg.AllowTestEndpoints,
		},
		Messages: &handler.MessageHandler{
			Messages:     messageRepo,
			Threads:      threadRepo,
			Influencers:  influencerRepo,
			Campaigns:    campaignRepo,
			Drafts:       generator,
			Email:        provider,
			Sender:       sender,
			FollowupDays: cfg.FollowupDays,
		},
		Jobs: &handler.JobHandler{
			Jobs:         jobs,
			Publisher:    publisher,
			FollowupDays: cfg.FollowupDays,
		},
		Webhooks: &handler.WebhookHandler{Service: threadService, Log: log},
	})

	log.WithField("addr", cfg.HTTPAddr).Info("server listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, router); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
