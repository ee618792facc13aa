package nats

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Stream layout shared with the email microservice.
const (
	StreamName  = "EMAILS"
	StreamSubj  = "EMAILS.*"
	EmailToSend = "EMAILS.send"
)

// Connect opens a connection to natsURL and returns it together with a
// JetStream context. The EMAILS stream is created when missing. The caller
// owns the connection and must close it.
func Connect(natsURL string, timeout time.Duration) (*nats.Conn, nats.JetStreamContext, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("seo-weekly-mail"),
		nats.Timeout(timeout),
		nats.NoReconnect(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to NATS: %w", err)
	}

	js, err := nc.JetStream(nats.MaxWait(timeout))
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("error creating JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(StreamName); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     StreamName,
			Subjects: []string{StreamSubj},
		})
		if err != nil {
			log.Printf("WARN: could not create stream %s (it likely already exists): %v", StreamName, err)
		}
	}

	return nc, js, nil
}
