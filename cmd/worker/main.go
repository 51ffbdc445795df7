package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/hellotonatural/jeeves-backend/internal/config"
	"github.com/hellotonatural/jeeves-backend/internal/db"
	"github.com/hellotonatural/jeeves-backend/internal/draft"
	"github.com/hellotonatural/jeeves-backend/internal/email"
	"github.com/hellotonatural/jeeves-backend/internal/queue"
	"github.com/hellotonatural/jeeves-backend/internal/repository"
	"github.com/hellotonatural/jeeves-backend/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, relying on OS environment variables")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.WithField("service", "jeeves-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	conn, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	generator := draft.NewGenerator(cfg.LLMMode, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	provider, err := email.NewProvider(cfg.EmailProvider, cfg.SendGridAPIKey, cfg.DryRun, cfg.TestEmail)
	if err != nil {
		log.WithError(err).Fatal("email provider setup failed")
	}

	jobs := &scheduler.Jobs{
		Threads:     &repository.ThreadRepository{DB: conn.DB},
		Messages:    &repository.MessageRepository{DB: conn.DB},
		Influencers: &repository.InfluencerRepository{DB: conn.DB},
		Campaigns:   &repository.CampaignRepository{DB: conn.DB},
		Drafts:      generator,
		Email:       provider,
		Sender:      email.Sender{FromEmail: cfg.FromEmail, FromName: cfg.FromName, ReplyTo: cfg.ReplyTo},
		Log:         log,
	}

	amqpConn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to RabbitMQ")
	}
	defer amqpConn.Close()

	ch, err := amqpConn.Channel()
	if err != nil {
		log.WithError(err).Fatal("failed to open a channel")
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		queue.QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to declare queue")
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to register consumer")
	}

	log.Info("worker running, waiting for jobs")
	for d := range deliveries {
		var req queue.JobRequest
		if err := json.Unmarshal(d.Body, &req); err != nil {
			log.WithError(err).Warn("dropping malformed job payload")
			d.Ack(false)
			continue
		}

		if err := runJob(context.Background(), jobs, cfg, req, log); err != nil {
			log.WithError(err).WithField("job", req.Job).Error("job failed")
			// No requeue: every job is idempotent and runs again on its
			// schedule.
		}
		d.Ack(false)
	}
}

func runJob(ctx context.Context, jobs *scheduler.Jobs, cfg config.Config, req queue.JobRequest, log *logrus.Entry) error {
	jobLog := log.WithField("job", req.Job)

	switch req.Job {
	case queue.JobInitialDrafts:
		result, err := jobs.GenerateInitialDrafts(ctx, req.Limit)
		if err != nil {
			return err
		}
		jobLog.WithField("drafted", result.Drafted).Info("job done")

	case queue.JobFollowupDrafts:
		result, err := jobs.GenerateFollowupDrafts(ctx, req.DaysSinceSend, req.Limit)
		if err != nil {
			return err
		}
		jobLog.WithField("drafted", result.Drafted).Info("job done")

	case queue.JobScore:
		result, err := jobs.ScoreInfluencers(ctx, req.Limit, req.MaxAgeHours)
		if err != nil {
			return err
		}
		jobLog.WithField("scored", result.Scored).Info("job done")

	case queue.JobFillAndDraft:
		campaignID, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return fmt.Errorf("invalid campaign_id %q: %w", req.CampaignID, err)
		}
		result, err := jobs.FillAndDraft(ctx, scheduler.FillParams{
			CampaignID:    campaignID,
			MinScore:      req.MinScore,
			MaxNewThreads: req.MaxNewThreads,
			Platform:      req.Platform,
			RequireEmail:  req.RequireEmail,
		})
		if err != nil {
			return err
		}
		jobLog.WithField("created", result.Created).Info("job done")

	case queue.JobApproveAndSend:
		campaignID, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return fmt.Errorf("invalid campaign_id %q: %w", req.CampaignID, err)
		}
		followupDays := req.FollowupDays
		if followupDays < 1 {
			followupDays = cfg.FollowupDays
		}
		result, err := jobs.ApproveAndSend(ctx, scheduler.SendParams{
			CampaignID:   campaignID,
			Limit:        req.Limit,
			FollowupDays: followupDays,
			RequireEmail: req.RequireEmail,
		})
		if err != nil {
			return err
		}
		jobLog.WithField("sent", result.Sent).Info("job done")

	case queue.JobPipeline:
		campaignID, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return fmt.Errorf("invalid campaign_id %q: %w", req.CampaignID, err)
		}
		followupDays := req.FollowupDays
		if followupDays < 1 {
			followupDays = cfg.FollowupDays
		}
		result, err := jobs.RunPipeline(ctx, scheduler.PipelineParams{
			CampaignID:    campaignID,
			MinScore:      req.MinScore,
			MaxNewThreads: req.MaxNewThreads,
			Platform:      req.Platform,
			RequireEmail:  req.RequireEmail,
			SendLimit:     req.Limit,
			FollowupDays:  followupDays,
		})
		if err != nil {
			return err
		}
		jobLog.WithFields(map[string]any{
			"created": result.Fill.Created,
			"sent":    result.Send.Sent,
		}).Info("job done")

	default:
		jobLog.Warn("unknown job name, dropping")
	}
	return nil
}
