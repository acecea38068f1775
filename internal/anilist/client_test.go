package anilist_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seasonmap/internal/anilist"
	"seasonmap/internal/httpretry"
	"seasonmap/internal/logging"
)

func newClient(t *testing.T, handler http.HandlerFunc) *anilist.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	requester := httpretry.New(logging.NewNop(), httpretry.WithSleep(func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}))
	return anilist.New(requester, server.URL, logging.NewNop())
}

func TestFetchMediaSuccess(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]int `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Variables["id"] != 20958 || body.Query == "" {
			t.Errorf("unexpected request body: %#v", body)
		}
		_, _ = w.Write([]byte(`{"data":{"Media":{"startDate":{"year":2017,"month":4,"day":1},"title":{"romaji":"Shingeki no Kyojin 2","english":"Attack on Titan Season 2"}}}}`))
	})

	media := client.FetchMedia(context.Background(), 20958)
	if media.StartDate != "2017-04-01" {
		t.Fatalf("unexpected start date %q", media.StartDate)
	}
	if media.Title != "Attack on Titan Season 2" {
		t.Fatalf("unexpected title %q", media.Title)
	}
}

func TestFetchMediaTitleAndDateRules(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantTitle string
		wantDate  string
	}{
		{
			name:      "romaji fallback",
			payload:   `{"data":{"Media":{"startDate":{"year":2006,"month":10,"day":3},"title":{"romaji":"Kuroko no Basket","english":null}}}}`,
			wantTitle: "Kuroko no Basket",
			wantDate:  "2006-10-03",
		},
		{
			name:      "empty english falls back",
			payload:   `{"data":{"Media":{"startDate":{"year":2020,"month":1,"day":9},"title":{"romaji":"Romaji","english":"  "}}}}`,
			wantTitle: "Romaji",
			wantDate:  "2020-01-09",
		},
		{
			name:      "day zero is incomplete",
			payload:   `{"data":{"Media":{"startDate":{"year":2017,"month":4,"day":0},"title":{"english":"Partial"}}}}`,
			wantTitle: "Partial",
		},
		{
			name:      "missing day is incomplete",
			payload:   `{"data":{"Media":{"startDate":{"year":2017,"month":4,"day":null},"title":{"english":"Partial"}}}}`,
			wantTitle: "Partial",
		},
		{
			name:     "no titles",
			payload:  `{"data":{"Media":{"startDate":{"year":2017,"month":4,"day":1},"title":{"romaji":null,"english":null}}}}`,
			wantDate: "2017-04-01",
		},
		{
			name:    "missing media",
			payload: `{"data":{"Media":null},"errors":[{"message":"Not Found.","status":404}]}`,
		},
		{
			name:    "malformed",
			payload: `{"data":`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.payload))
			})
			media := client.FetchMedia(context.Background(), 1)
			if media.Title != tt.wantTitle {
				t.Fatalf("title = %q, want %q", media.Title, tt.wantTitle)
			}
			if media.StartDate != tt.wantDate {
				t.Fatalf("start date = %q, want %q", media.StartDate, tt.wantDate)
			}
			if media.HasStartDate() != (tt.wantDate != "") {
				t.Fatalf("HasStartDate mismatch for %q", media.StartDate)
			}
		})
	}
}

func TestFetchMediaHTTPErrorIsAbsent(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"data":{"Media":null}}`))
	})
	media := client.FetchMedia(context.Background(), 1)
	if media.Title != "" || media.HasStartDate() {
		t.Fatalf("expected empty media, got %#v", media)
	}
}

func TestFetchMediaNormalizesTitle(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		// "e" followed by a combining acute accent.
		_, _ = w.Write([]byte(`{"data":{"Media":{"startDate":{"year":2019,"month":1,"day":1},"title":{"english":"Poke\u0301mon"}}}}`))
	})
	media := client.FetchMedia(context.Background(), 1)
	if media.Title != "Pok\u00e9mon" {
		t.Fatalf("expected NFC-composed title, got %q", media.Title)
	}
}

func TestHealthCheck(t *testing.T) {
	healthy := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"Media":{"id":1}}}`))
	})
	if err := healthy.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}

	down := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if err := down.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for 503")
	}
}
