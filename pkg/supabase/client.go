package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every request made by a Client
const DefaultTimeout = 10 * time.Second

// Client represents a Supabase client
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// Error is returned when Supabase answers with a 4xx or 5xx status
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supabase error (status %d): %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed if retried later
func (e *Error) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// NewClient creates a new Supabase client
func NewClient(url, serviceKey string) *Client {
	return &Client{
		URL:        url,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Query executes a PostgREST select on a Supabase table.
// Each query value is sent as-is, e.g. "user_id": "eq.<id>".
func (c *Client) Query(ctx context.Context, table string, query map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.URL, table)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, value := range query {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	return c.do(req, c.ServiceKey)
}

// Insert inserts a record into a Supabase table and returns the stored representation
func (c *Client) Insert(ctx context.Context, table string, data interface{}) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.URL, table)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	return c.do(req, c.ServiceKey)
}

// VerifyToken verifies a JWT token with Supabase
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	url := fmt.Sprintf("%s/auth/v1/user", c.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	body, err := c.do(req, token)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

// do sends req with the service key as apikey and bearer as Authorization
func (c *Client) do(req *http.Request, bearer string) ([]byte, error) {
	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearer))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// User represents a Supabase user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
