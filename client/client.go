// Package client is the Go client for the confession board API. It keeps
// a local optimistic view of the feed: submissions and reaction toggles
// show up immediately and are reconciled against the authoritative server
// state when the call resolves or when the change feed delivers the row.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
)

// ErrToggleInFlight is returned when a toggle for the same (confession,
// kind) pair is already running. A second click is rejected, not queued.
var ErrToggleInFlight = errors.New("reaction toggle already in flight")

// MaxChars is the advisory client-side character ceiling. The server
// re-runs the authoritative check; this only disables submission early.
const MaxChars = 5000

type Client struct {
	http     *resty.Client
	baseURL  string
	deviceID string
	feed     *Feed

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func New(baseURL, deviceID string) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetHeader("Content-Type", "application/json")

	return &Client{
		http:     httpClient,
		baseURL:  baseURL,
		deviceID: deviceID,
		feed:     NewFeed(DefaultFeedCap),
		inFlight: make(map[string]struct{}),
	}
}

// Feed returns the client's reconciled feed view.
func (c *Client) Feed() *Feed {
	return c.feed
}

// DeviceID returns the opaque identifier this client reacts under.
func (c *Client) DeviceID() string {
	return c.deviceID
}

// Precheck is the advisory submission gate: 1-200 words and at most
// MaxChars characters. It may disagree with the server's check.
func Precheck(content string) bool {
	words := len(strings.Fields(strings.TrimSpace(content)))
	return words >= 1 && words <= 200 && len(content) <= MaxChars
}

type errorBody struct {
	Error string `json:"error"`
}

// Submit posts content. A pending entry is prepended before the request
// is sent; on failure it is rolled back, on success the authoritative row
// replaces it (here or via the change feed, whichever lands first).
func (c *Client) Submit(ctx context.Context, content string) (Entry, error) {
	trimmed := strings.TrimSpace(content)
	pending := c.feed.AddPending(trimmed)

	var result struct {
		Confession Entry `json:"confession"`
	}
	var apiErr errorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"content": trimmed}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/confessions")
	if err != nil {
		c.feed.Remove(pending.ID)
		return Entry{}, fmt.Errorf("failed to submit confession: %w", err)
	}
	if !resp.IsSuccess() {
		c.feed.Remove(pending.ID)
		return Entry{}, fmt.Errorf("failed to submit confession: %s", apiError(resp, apiErr))
	}

	c.feed.Merge(result.Confession)
	return result.Confession, nil
}

// List fetches the current feed and replaces the local view.
func (c *Client) List(ctx context.Context) error {
	var result struct {
		Confessions []Entry `json:"confessions"`
	}
	var apiErr errorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("deviceId", c.deviceID).
		SetResult(&result).
		SetError(&apiErr).
		Get("/api/confessions")
	if err != nil {
		return fmt.Errorf("failed to fetch confessions: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("failed to fetch confessions: %s", apiError(resp, apiErr))
	}

	c.feed.Replace(result.Confessions)
	return nil
}

type toggleResponse struct {
	Success      bool   `json:"success"`
	Action       string `json:"action"`
	ReactionType string `json:"reaction_type"`
	Counts       struct {
		SupportCount int64 `json:"support_count"`
		RelateCount  int64 `json:"relate_count"`
	} `json:"counts"`
}

// Toggle flips the device's reaction of the given kind on a confession.
// The local count and flag flip immediately; the authoritative response
// overwrites them, and any failure rolls back to the pre-action value.
// A toggle for an identity already in flight is rejected with
// ErrToggleInFlight.
func (c *Client) Toggle(ctx context.Context, confessionID, kind string) error {
	before, ok := c.feed.Get(confessionID)
	if !ok {
		return fmt.Errorf("unknown confession %s", confessionID)
	}
	if before.Pending() {
		return fmt.Errorf("confession %s is not yet confirmed", confessionID)
	}

	key := confessionID + "/" + kind
	c.mu.Lock()
	if _, busy := c.inFlight[key]; busy {
		c.mu.Unlock()
		return ErrToggleInFlight
	}
	c.inFlight[key] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}()

	// Optimistic flip.
	prev := reactionOf(before, kind)
	optimistic := ReactionUpdate{Kind: kind, Active: !prev.Active, Count: prev.Count + 1}
	if prev.Active {
		optimistic.Count = prev.Count - 1
	}
	c.feed.ApplyReaction(confessionID, optimistic)

	var result toggleResponse
	var apiErr errorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"confession_id": confessionID,
			"reaction_type": kind,
			"device_id":     c.deviceID,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/reactions")
	if err != nil {
		c.feed.ApplyReaction(confessionID, prev)
		return fmt.Errorf("failed to toggle reaction: %w", err)
	}
	if !resp.IsSuccess() {
		c.feed.ApplyReaction(confessionID, prev)
		return fmt.Errorf("failed to toggle reaction: %s", apiError(resp, apiErr))
	}

	authoritative := ReactionUpdate{
		Kind:   kind,
		Active: result.Action == "added",
	}
	if kind == "support" {
		authoritative.Count = result.Counts.SupportCount
	} else {
		authoritative.Count = result.Counts.RelateCount
	}
	c.feed.ApplyReaction(confessionID, authoritative)
	return nil
}

// RemoveReaction removes the device's reaction. Idempotent server-side.
func (c *Client) RemoveReaction(ctx context.Context, confessionID, kind string) error {
	var apiErr errorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"confession_id": confessionID,
			"reaction_type": kind,
			"device_id":     c.deviceID,
		}).
		SetError(&apiErr).
		Delete("/api/reactions")
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("failed to remove reaction: %s", apiError(resp, apiErr))
	}

	before, ok := c.feed.Get(confessionID)
	if ok {
		prev := reactionOf(before, kind)
		count := prev.Count
		if prev.Active && count > 0 {
			count--
		}
		c.feed.ApplyReaction(confessionID, ReactionUpdate{Kind: kind, Count: count, Active: false})
	}
	return nil
}

// Subscribe connects to the change feed and merges insert events into the
// feed until ctx is done or the connection drops. The reconciler tolerates
// events for rows it already displays, including its own optimistic
// inserts.
func (c *Client) Subscribe(ctx context.Context) error {
	wsURL, err := changeFeedURL(c.baseURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect change feed: %w", err)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("change feed closed: %w", err)
		}

		var row Entry
		if err := json.Unmarshal(payload, &row); err != nil {
			continue
		}
		c.feed.Merge(row)
	}
}

func reactionOf(entry Entry, kind string) ReactionUpdate {
	if kind == "support" {
		return ReactionUpdate{Kind: kind, Count: entry.SupportCount, Active: entry.UserSupport}
	}
	return ReactionUpdate{Kind: kind, Count: entry.RelateCount, Active: entry.UserRelate}
}

func apiError(resp *resty.Response, body errorBody) string {
	if body.Error != "" {
		return body.Error
	}
	return resp.Status()
}

func changeFeedURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/confessions/ws"
	return u.String(), nil
}
