package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Send(t *testing.T) {
	var received Payload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	err := NewNotifier(server.URL).Send(context.Background(), "Value: Hello World")
	require.NoError(t, err)
	assert.Equal(t, Payload{Text: "Value: Hello World"}, received)
}

func TestNotifier_Send_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid_token"))
	}))
	defer server.Close()

	err := NewNotifier(server.URL).Send(context.Background(), "Value: Hello World")
	require.Error(t, err)
	assert.Equal(t, "webhook returned HTTP 403: invalid_token", err.Error())

	url := server.URL
	server.Close()

	err = NewNotifier(url).Send(context.Background(), "Value: Hello World")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to post to webhook")
}
