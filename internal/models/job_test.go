package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailJob_WireFormat(t *testing.T) {
	msg := Message{ID: "id-1", From: "bot@example.com", To: "owner@example.com", Subject: "s", Body: "b", Week: 3}

	raw, err := json.Marshal(NewEmailJob(msg, "seo-weekly"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"recipients": ["owner@example.com"],
		"subject": "s",
		"body_content": "b",
		"app_tag": "seo-weekly"
	}`, string(raw))
}
