// Package realmeye is the read-only client for the external profile
// site. Every failure mode (transport error, timeout, not found,
// private profile) collapses into ErrUnavailable: the verification
// protocol treats them all the same and never retries on its own.
package realmeye

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"verify-bot/models"
)

// ErrUnavailable is the uniform outcome for any failed lookup.
var ErrUnavailable = errors.New("realmeye: unavailable")

// Service is the profile-lookup capability consumed by the verification
// core. All calls are time-bounded by the client's own timeout.
type Service interface {
	IsOnline(ctx context.Context) bool
	GetPlayerInfo(ctx context.Context, name string) (*models.PlayerProfile, error)
	GetNameHistory(ctx context.Context, name string) (*models.NameHistory, error)
	GetGraveyardSummary(ctx context.Context, name string) (*models.GraveyardSummary, error)
	GetExaltations(ctx context.Context, name string) (*models.ExaltationRecord, error)
}

// Client talks to a profile API endpoint over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewClient creates a new profile API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		timeout:    timeout,
	}
}

// IsOnline reports whether the profile API currently answers at all.
func (c *Client) IsOnline(ctx context.Context) bool {
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.getJSON(ctx, "/status", &out); err != nil {
		return false
	}
	return out.OK
}

// GetPlayerInfo fetches a fresh profile snapshot for the named player.
func (c *Client) GetPlayerInfo(ctx context.Context, name string) (*models.PlayerProfile, error) {
	var profile models.PlayerProfile
	if err := c.getJSON(ctx, "/player/"+url.PathEscape(name), &profile); err != nil {
		return nil, err
	}
	profile.FetchedAt = time.Now()
	return &profile, nil
}

// GetNameHistory fetches the ordered list of names the profile carried.
func (c *Client) GetNameHistory(ctx context.Context, name string) (*models.NameHistory, error) {
	var history models.NameHistory
	if err := c.getJSON(ctx, "/player/"+url.PathEscape(name)+"/names", &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// GetGraveyardSummary fetches per-achievement completion totals.
func (c *Client) GetGraveyardSummary(ctx context.Context, name string) (*models.GraveyardSummary, error) {
	var summary models.GraveyardSummary
	if err := c.getJSON(ctx, "/player/"+url.PathEscape(name)+"/graveyard", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetExaltations fetches per-character exaltation bonuses.
func (c *Client) GetExaltations(ctx context.Context, name string) (*models.ExaltationRecord, error) {
	var record models.ExaltationRecord
	if err := c.getJSON(ctx, "/player/"+url.PathEscape(name)+"/exaltations", &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// getJSON performs one bounded GET and decodes the JSON body. The
// caller may pass a nil context; a default timeout is applied either way.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.Debugf("profile API request %s failed: %v", path, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.Debugf("profile API request %s returned status %d", path, resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return nil
}
