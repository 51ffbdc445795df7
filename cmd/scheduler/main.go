// The scheduler is the beat process: it publishes job triggers on a fixed
// cadence and does no work itself.
package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hellotonatural/jeeves-backend/internal/config"
	"github.com/hellotonatural/jeeves-backend/internal/queue"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, relying on OS environment variables")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.WithField("service", "jeeves-scheduler")

	cfg := config.Load()
	publisher, err := queue.NewPublisher(cfg.AMQPURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to RabbitMQ")
	}
	defer publisher.Close()

	// OUTREACH_CAMPAIGN_ID enables the recurring fill-and-send pipeline for
	// one campaign.
	campaignID := os.Getenv("OUTREACH_CAMPAIGN_ID")

	publish := func(req queue.JobRequest) {
		if err := publisher.Publish(req); err != nil {
			log.WithError(err).WithField("job", req.Job).Error("publish failed")
			return
		}
		log.WithField("job", req.Job).Info("job queued")
	}

	drafts := time.NewTicker(time.Minute)
	followups := time.NewTicker(time.Hour)
	pipeline := time.NewTicker(30 * time.Minute)
	scoring := time.NewTicker(24 * time.Hour)
	defer drafts.Stop()
	defer followups.Stop()
	defer pipeline.Stop()
	defer scoring.Stop()

	log.Info("scheduler running")
	for {
		select {
		case <-drafts.C:
			publish(queue.JobRequest{Job: queue.JobInitialDrafts, Limit: 25})

		case <-followups.C:
			publish(queue.JobRequest{Job: queue.JobFollowupDrafts, DaysSinceSend: 3, Limit: 25})

		case <-pipeline.C:
			if campaignID == "" {
				continue
			}
			publish(queue.JobRequest{
				Job:           queue.JobPipeline,
				CampaignID:    campaignID,
				MinScore:      70,
				MaxNewThreads: 25,
				RequireEmail:  true,
				Limit:         25,
				FollowupDays:  cfg.FollowupDays,
			})

		case <-scoring.C:
			publish(queue.JobRequest{Job: queue.JobScore, Limit: 200, MaxAgeHours: 24})
		}
	}
}
