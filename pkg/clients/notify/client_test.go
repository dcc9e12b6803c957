package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/labstock/pkg/clients/notify"
)

func TestSendPostsJSON(t *testing.T) {
	var got notify.Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := notify.NewClient(server.URL)
	require.NoError(t, client.Send(context.Background(), notify.Message{Title: "Low stock", Text: "LED: 3"}))

	assert.Equal(t, "Low stock", got.Title)
	assert.Equal(t, "LED: 3", got.Text)
	assert.False(t, got.SentAt.IsZero())
}

func TestSendReportsWebhookError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer server.Close()

	err := notify.NewClient(server.URL).Send(context.Background(), notify.Message{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=403")
	assert.Contains(t, err.Error(), "invalid_token")
}

func TestSendWithoutURL(t *testing.T) {
	assert.Error(t, notify.NewClient(" ").Send(context.Background(), notify.Message{Text: "x"}))
}
