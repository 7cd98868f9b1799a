package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestClient_GetJSON(t *testing.T) {
	var gotUA, gotAccept, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count": 2, "name": "Tool"}`))
	}))
	defer srv.Close()

	var out struct {
		Count int    `json:"count"`
		Name  string `json:"name"`
	}
	client := NewClient("", 0)
	if err := client.GetJSON(context.Background(), srv.URL+"/artist", url.Values{"query": {"artist:Tool"}}, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Count != 2 || out.Name != "Tool" {
		t.Errorf("decoded %+v", out)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotQuery != "artist:Tool" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient("test-agent", 0).Get(context.Background(), srv.URL)
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if serr.StatusCode != http.StatusServiceUnavailable || serr.Body != "rate limited" {
		t.Errorf("StatusError = %+v", serr)
	}
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	var out map[string]any
	if err := NewClient("", 0).GetJSON(context.Background(), srv.URL, nil, &out); err == nil {
		t.Error("GetJSON accepted HTML")
	}
}
