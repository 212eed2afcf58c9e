package convai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetSignedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/convai/conversation/get-signed-url" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("agent_id") != "agent-123" {
			t.Errorf("unexpected agent_id: %s", r.URL.Query().Get("agent_id"))
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Errorf("unexpected api key: %s", r.Header.Get("xi-api-key"))
		}
		w.Write([]byte(`{"signed_url": "wss://api.elevenlabs.io/session?token=abc"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "agent-123", srv.URL)
	url, err := client.GetSignedURL(context.Background())
	if err != nil {
		t.Fatalf("GetSignedURL returned error: %v", err)
	}
	if url != "wss://api.elevenlabs.io/session?token=abc" {
		t.Errorf("unexpected signed url: %s", url)
	}
}

func TestGetSignedURLErrors(t *testing.T) {
	t.Run("missing agent id", func(t *testing.T) {
		client := NewClient("test-key", "", "http://unused")
		if _, err := client.GetSignedURL(context.Background()); err == nil {
			t.Fatal("expected error when agent id is not configured")
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"unauthorized"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClient("bad-key", "agent-123", srv.URL)
		if _, err := client.GetSignedURL(context.Background()); err == nil {
			t.Fatal("expected error on non-200 response")
		}
	})

	t.Run("empty signed url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClient("test-key", "agent-123", srv.URL)
		if _, err := client.GetSignedURL(context.Background()); err == nil {
			t.Fatal("expected error when signed_url is missing")
		}
	})
}

func TestGetConversationDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/convai/conversations/conv-9" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"conversation_id": "conv-9", "status": "done"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "agent-123", srv.URL)
	details, err := client.GetConversationDetails(context.Background(), "conv-9")
	if err != nil {
		t.Fatalf("GetConversationDetails returned error: %v", err)
	}
	if details["status"] != "done" {
		t.Errorf("unexpected details: %v", details)
	}
}
