package models

// Message is one outgoing digest email. It is built once per run and sent
// at most once.
type Message struct {
	ID      string
	From    string
	To      string
	Subject string
	Body    string
	Week    int
}

// EmailJob is the payload the email microservice consumes from its
// JetStream queue.
type EmailJob struct {
	Recipients  []string `json:"recipients"`
	Subject     string   `json:"subject"`
	BodyContent string   `json:"body_content,omitempty"`
	AppTag      string   `json:"app_tag"`
}

// NewEmailJob wraps msg for the queue under the given app tag.
func NewEmailJob(msg Message, appTag string) EmailJob {
	return EmailJob{
		Recipients:  []string{msg.To},
		Subject:     msg.Subject,
		BodyContent: msg.Body,
		AppTag:      appTag,
	}
}
