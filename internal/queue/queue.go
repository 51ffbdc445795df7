// Package queue carries batch job triggers between the scheduler and the
// worker over RabbitMQ.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

const QueueName = "outreach_jobs"

// Job names accepted by the worker.
const (
	JobInitialDrafts  = "initial_drafts"
	JobFollowupDrafts = "followup_drafts"
	JobFillAndDraft   = "fill_and_draft"
	JobApproveAndSend = "approve_and_send"
	JobScore          = "score_influencers"
	JobPipeline       = "pipeline"
)

// JobRequest is the wire payload for one job invocation. Fields irrelevant to
// the named job are ignored by the worker.
type JobRequest struct {
	Job        string `json:"job"`
	CampaignID string `json:"campaign_id,omitempty"`

	Limit         int     `json:"limit,omitempty"`
	MinScore      float64 `json:"min_score,omitempty"`
	MaxNewThreads int     `json:"max_new_threads,omitempty"`
	Platform      string  `json:"platform,omitempty"`
	RequireEmail  bool    `json:"require_email,omitempty"`
	DaysSinceSend int     `json:"days_since_send,omitempty"`
	FollowupDays  int     `json:"followup_days,omitempty"`
	MaxAgeHours   int     `json:"max_age_hours,omitempty"`
}

// Publisher pushes JobRequests onto the durable job queue.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(amqpURL string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring queue: %w", err)
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) Publish(req JobRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return p.ch.Publish(
		"",        // default exchange
		QueueName, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *Publisher) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
