// Package client is a Go client for the contest HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/contestfund/internal/common"
)

// Contest, Entry and Credit mirror the API's JSON documents.
type Contest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	PrizePool   int64     `json:"prize_pool"`
	Owner       string    `json:"owner"`
	Closed      bool      `json:"closed"`
	CreatedAt   time.Time `json:"created_at"`
}

type Entry struct {
	ID          string    `json:"id"`
	ContestID   string    `json:"contest_id"`
	Creator     string    `json:"creator"`
	ContentLink string    `json:"content_link"`
	Votes       int64     `json:"votes"`
	CreatedAt   time.Time `json:"created_at"`
}

type Credit struct {
	ID        string    `json:"id"`
	ContestID string    `json:"contest_id"`
	Funder    string    `json:"funder"`
	Allocated int64     `json:"allocated"`
	Used      int64     `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// APIError is a non-2xx response. It unwraps to the matching sentinel from
// internal/common so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// sentinels are ordered so that more specific messages match first.
var sentinels = []error{
	common.ErrUnauthorizedVoter,
	common.ErrTokenExpired,
	common.ErrInvalidToken,
	common.ErrContestMismatch,
	common.ErrAlreadyClosed,
	common.ErrContestClosed,
	common.ErrInsufficientVotes,
	common.ErrInvalidAmount,
	common.ErrInvalidInput,
	common.ErrPaymentFailed,
	common.ErrorNotFound,
	common.ErrorUnauthorized,
}

func (e *APIError) Unwrap() error {
	for _, s := range sentinels {
		if strings.Contains(e.Message, s.Error()) {
			return s
		}
	}
	switch e.Status {
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusUnauthorized:
		return common.ErrInvalidToken
	case http.StatusForbidden:
		return common.ErrorUnauthorized
	}
	return common.ErrorInternal
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New returns a client for the API served at baseURL (e.g. "http://localhost:8080").
// token may be empty for read-only use.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

func (c *Client) CreateContest(ctx context.Context, title, description string, deadline time.Time) (string, error) {
	body := map[string]any{"title": title, "description": description, "deadline": deadline}
	return c.create(ctx, "/contests", body)
}

func (c *Client) GetContest(ctx context.Context, id string) (*Contest, error) {
	var out Contest
	if err := c.do(ctx, http.MethodGet, "/contests/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CloseContest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/contests/"+url.PathEscape(id)+"/close", nil, nil)
}

// Fund contributes amount to the contest and returns the new credit id.
func (c *Client) Fund(ctx context.Context, contestID string, amount int64) (string, error) {
	return c.create(ctx, "/contests/"+url.PathEscape(contestID)+"/credits", map[string]any{"amount": amount})
}

func (c *Client) SubmitEntry(ctx context.Context, contestID, contentLink string) (string, error) {
	return c.create(ctx, "/contests/"+url.PathEscape(contestID)+"/entries", map[string]any{"content_link": contentLink})
}

func (c *Client) ListEntries(ctx context.Context, contestID string) ([]Entry, error) {
	var out []Entry
	if err := c.do(ctx, http.MethodGet, "/contests/"+url.PathEscape(contestID)+"/entries", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEntry(ctx context.Context, id string) (*Entry, error) {
	var out Entry
	if err := c.do(ctx, http.MethodGet, "/entries/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CastVote(ctx context.Context, entryID, creditID string, amount int64) error {
	body := map[string]any{"credit_id": creditID, "amount": amount}
	return c.do(ctx, http.MethodPost, "/entries/"+url.PathEscape(entryID)+"/votes", body, nil)
}

// MyCredits lists the credits issued to the token's identity.
func (c *Client) MyCredits(ctx context.Context) ([]Credit, error) {
	var out []Credit
	if err := c.do(ctx, http.MethodGet, "/credits", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCredit(ctx context.Context, id string) (*Credit, error) {
	var out Credit
	if err := c.do(ctx, http.MethodGet, "/credits/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) create(ctx context.Context, path string, body any) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(b, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(b))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
