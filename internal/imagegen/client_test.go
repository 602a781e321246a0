package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["prompt"] == "" {
			http.Error(w, "missing prompt", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	data, contentType, err := client.Generate(context.Background(), "a sunset over mountains")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(data) != "png-bytes" || contentType != "image/png" {
		t.Errorf("got %q (%s)", data, contentType)
	}
}

func TestGenerateDisabled(t *testing.T) {
	client := NewClient("", "")
	if client.Enabled() {
		t.Error("client with no URL must report disabled")
	}
	if _, _, err := client.Generate(context.Background(), "x"); err == nil {
		t.Error("expected error from disabled client")
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	client := NewClient("http://localhost:1", "")
	if _, _, err := client.Generate(context.Background(), "   "); err == nil {
		t.Error("expected error for blank prompt")
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if _, _, err := client.Generate(context.Background(), "x"); err == nil {
		t.Error("expected error for upstream failure")
	}
}
