package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientParseTrees(t *testing.T) {
	const trees = "(ROOT (S (NP (PRP I)) (VP (VBP run))))"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/parse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req parseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "I run." {
			t.Errorf("unexpected text %q", req.Text)
		}
		json.NewEncoder(w).Encode(parseResponse{Trees: trees})
	}))
	defer srv.Close()

	stats := NewParseStats(time.Hour)
	c := NewClient(srv.URL, "secret", stats)
	got, err := c.ParseTrees(context.Background(), "I run.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != trees {
		t.Errorf("expected %q, got %q", trees, got)
	}
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Errorf("expected one recorded call, got %d", snap.Count)
	}
	if snap.Trees != 1 {
		t.Errorf("expected one tree counted, got %d", snap.Trees)
	}
}

func TestClientParseTrees_Retryable(t *testing.T) {
	stats := NewParseStats(time.Hour)
	for _, status := range []int{http.StatusTooManyRequests, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		c := NewClient(srv.URL, "", stats)
		_, err := c.ParseTrees(context.Background(), "x")
		srv.Close()

		var retryErr *RetryableError
		if !errors.As(err, &retryErr) {
			t.Errorf("status %d: expected RetryableError, got %v", status, err)
		}
	}
	if got := stats.Snapshot().Failures; got != 2 {
		t.Errorf("expected 2 recorded failures, got %d", got)
	}
}

func TestClientParseTrees_NonRetryableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	_, err := c.ParseTrees(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		t.Errorf("400 should not be retryable: %v", err)
	}
}

func TestClientParseTrees_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(parseResponse{Error: "model not loaded"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	if _, err := c.ParseTrees(context.Background(), "x"); err == nil {
		t.Fatal("expected error for service-reported failure")
	}
}
