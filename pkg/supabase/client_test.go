package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQuerySendsFiltersAndKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/check_ins" {
			t.Errorf("path = %q, want /rest/v1/check_ins", r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "eq.user-1" {
			t.Errorf("user_id filter = %q, want eq.user-1", got)
		}
		if got := r.Header.Get("apikey"); got != "service-key" {
			t.Errorf("apikey = %q, want service-key", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Errorf("Authorization = %q, want Bearer service-key", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "service-key")
	body, err := client.Query(context.Background(), "check_ins", map[string]string{"user_id": "eq.user-1"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if string(body) != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestQueryReturnsTypedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"down"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "service-key")
	_, err := client.Query(context.Background(), "check_ins", nil)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", apiErr.StatusCode)
	}
	if !apiErr.Temporary() {
		t.Error("503 should be temporary")
	}
}

func TestVerifyTokenUsesUserToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer user-jwt" {
			t.Errorf("Authorization = %q, want Bearer user-jwt", got)
		}
		w.Write([]byte(`{"id":"user-1","email":"a@example.com"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "service-key")
	user, err := client.VerifyToken(context.Background(), "user-jwt")
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want user-1", user.ID)
	}
}

func TestQueryHonoursContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "service-key")
	if _, err := client.Query(ctx, "check_ins", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
