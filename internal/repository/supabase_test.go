package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/JonnyWalker81/moodtrack/backend/pkg/supabase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *supabase.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return supabase.NewClient(server.URL, "service-key")
}

func TestFetchCheckInsMapsRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("and"); got != "(created_date.gte.2024-03-01,created_date.lte.2024-03-08)" {
			t.Errorf("date filter = %q", got)
		}
		if got := q.Get("reflection_text"); got != "" {
			t.Errorf("reflection filter should be absent, got %q", got)
		}
		w.Write([]byte(`[
			{"id":"c1","user_id":"u1","emotion_id":"e1","intensity":4,"reflection_text":"work deadline",
			 "created_at":"2024-03-08T09:15:00+00:00","created_date":"2024-03-08",
			 "emotion":{"name":"stressed","emoji":"😣"}},
			{"id":"c2","user_id":"u1","emotion_id":"e2","intensity":2,"reflection_text":null,
			 "created_at":"2024-03-07T20:00:00+00:00","created_date":"2024-03-07","emotion":null}
		]`))
	})

	repo := NewCheckInRepository(client)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	checkIns, err := repo.FetchCheckIns(context.Background(), "u1", start, end, false)
	if err != nil {
		t.Fatalf("FetchCheckIns returned error: %v", err)
	}
	if len(checkIns) != 2 {
		t.Fatalf("expected 2 check-ins, got %d", len(checkIns))
	}

	first := checkIns[0]
	if first.EmotionName != "stressed" || first.EmotionEmoji != "😣" {
		t.Errorf("emotion not mapped: %+v", first)
	}
	if first.ReflectionText == nil || *first.ReflectionText != "work deadline" {
		t.Errorf("reflection not mapped: %v", first.ReflectionText)
	}
	if first.CreatedDate.Format(models.DateLayout) != "2024-03-08" {
		t.Errorf("created_date = %v", first.CreatedDate)
	}

	second := checkIns[1]
	if second.ReflectionText != nil {
		t.Errorf("expected nil reflection, got %q", *second.ReflectionText)
	}
	if second.EmotionName != "" {
		t.Errorf("expected empty emotion for missing join, got %q", second.EmotionName)
	}
	if err := second.Validate(); err == nil {
		t.Error("check-in without emotion should fail validation")
	}
}

func TestFetchCheckInsRequireReflection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("reflection_text"); got != "not.is.null" {
			t.Errorf("reflection filter = %q, want not.is.null", got)
		}
		w.Write([]byte(`[]`))
	})

	repo := NewCheckInRepository(client)
	now := time.Now()
	if _, err := repo.FetchCheckIns(context.Background(), "u1", now, now, true); err != nil {
		t.Fatalf("FetchCheckIns returned error: %v", err)
	}
}

func TestGetCurrentInsightNoneFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("period_start_date"); got != "gte.2024-03-01" {
			t.Errorf("period filter = %q", got)
		}
		if got := q.Get("order"); got != "generated_at.desc" {
			t.Errorf("order = %q", got)
		}
		w.Write([]byte(`[]`))
	})

	repo := NewInsightRepository(client)
	record, err := repo.GetCurrent(context.Background(), "u1", models.InsightTypeWeeklySummary,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetCurrent returned error: %v", err)
	}
	if record != nil {
		t.Errorf("expected no record, got %+v", record)
	}
}

func TestStoreInsightInserts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["period_start_date"] != "2024-03-01" {
			t.Errorf("period_start_date = %v", body["period_start_date"])
		}
		w.Write([]byte(`[{"id":"i1","user_id":"u1","insight_type":"weekly_summary","content":"hello",
			"period_start_date":"2024-03-01","generated_at":"2024-03-08T10:00:00Z"}]`))
	})

	repo := NewInsightRepository(client)
	record, err := repo.Store(context.Background(), "u1", models.InsightTypeWeeklySummary, "hello",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if record.ID != "i1" || record.Content != "hello" {
		t.Errorf("unexpected record: %+v", record)
	}
}

func TestGetSubscriptionTierDefaultsToFree(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	repo := NewUserRepository(client)
	tier, err := repo.GetSubscriptionTier(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetSubscriptionTier returned error: %v", err)
	}
	if tier != models.TierFree {
		t.Errorf("tier = %q, want free", tier)
	}
}

func TestSupabaseErrorsMarkPermanentRejections(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		wantRejected bool
	}{
		{name: "bad filter", status: http.StatusBadRequest, wantRejected: true},
		{name: "missing table", status: http.StatusNotFound, wantRejected: true},
		{name: "throttled", status: http.StatusTooManyRequests, wantRejected: false},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantRejected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"nope"}`))
			})

			_, err := NewCheckInRepository(client).FetchCheckIns(context.Background(), "u1", time.Now(), time.Now(), false)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, ErrRejected); got != tt.wantRejected {
				t.Errorf("errors.Is(err, ErrRejected) = %v, want %v (%v)", got, tt.wantRejected, err)
			}

			var apiErr *supabase.Error
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Errorf("expected wrapped *supabase.Error with status %d, got %v", tt.status, err)
			}
		})
	}
}
