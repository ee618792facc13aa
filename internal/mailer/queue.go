package mailer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"seo-weekly-mail/internal/config"
	"seo-weekly-mail/internal/models"
	natsclient "seo-weekly-mail/internal/nats"
)

// QueueSender hands the digest to the email microservice by publishing an
// EmailJob on its JetStream queue. The job id doubles as the JetStream
// dedup key, so a repeated publish of the same message is dropped.
type QueueSender struct {
	url    string
	appTag string
}

func NewQueueSender(cfg config.NATSConfig) *QueueSender {
	return &QueueSender{url: cfg.URL, appTag: cfg.AppTag}
}

func (s *QueueSender) Send(ctx context.Context, msg models.Message) error {
	jobJSON, err := json.Marshal(models.NewEmailJob(msg, s.appTag))
	if err != nil {
		return &DeliveryError{Transport: config.TransportNATS, Op: "encode", Err: err}
	}

	nc, js, err := natsclient.Connect(s.url, Timeout)
	if err != nil {
		return &DeliveryError{Transport: config.TransportNATS, Op: "connect", Err: err}
	}
	defer nc.Close()

	opts := []nats.PubOpt{nats.Context(ctx)}
	if msg.ID != "" {
		opts = append(opts, nats.MsgId(msg.ID))
	}
	ack, err := js.Publish(natsclient.EmailToSend, jobJSON, opts...)
	if err != nil {
		return &DeliveryError{Transport: config.TransportNATS, Op: "publish", Err: err}
	}
	if ack.Duplicate {
		log.Printf("WARN: job %s was already queued, JetStream dropped the duplicate", msg.ID)
	}
	return nil
}
