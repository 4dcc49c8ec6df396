// Package psnclient is the concrete PlayStation Network API client
// consumed by internal/psnqueue, built on the teacher's
// internal/pkg/httpretry and an OAuth2 token (npsso exchanged for an
// access/refresh token pair, the PSN API's actual auth flow).
package psnclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/pkg/httpretry"
	"github.com/ignite/pixelforum/internal/psnqueue"
)

const (
	baseURL     = "https://m.np.playstation.com/api"
	authHost    = "https://ca.account.sony.com/api/authz/v3/oauth/token"
	clientID    = "09515159-7237-4370-9b40-3806e67c0891"
	tokenExpiry = 55 * time.Minute
)

// Client talks to the PSN API over httpretry.RetryClient, holding the
// current OAuth2 token behind a mutex since the actor that drives
// requests runs one at a time but Authenticate can race a concurrent
// renew.
type Client struct {
	http *httpretry.RetryClient

	mu    sync.RWMutex
	token *oauth2.Token
}

// New builds a Client with a fresh retrying HTTP transport.
func New() *Client {
	return &Client{http: httpretry.NewRetryClient(nil, 3)}
}

var _ psnqueue.Client = (*Client)(nil)

// Authenticate exchanges an npsso cookie or a refresh token for a new
// access token, matching the original's two-argument (Option<npsso>,
// Option<refresh_token>) auth request.
func (c *Client) Authenticate(ctx context.Context, npsso, refreshToken *string) error {
	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("scope", "psn:mobile.v2.core psn:clientapp")

	switch {
	case refreshToken != nil:
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", *refreshToken)
	case npsso != nil:
		form.Set("grant_type", "authorization_code")
		form.Set("npsso", *npsso)
	default:
		return &apierr.BadRequestDetail{Detail: "auth request requires npsso or refresh_token"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authHost,
		newFormBody(form))
	if err != nil {
		return fmt.Errorf("psnclient: build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := c.doJSON(req, &payload); err != nil {
		return err
	}

	c.mu.Lock()
	c.token = &oauth2.Token{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(tokenExpiry),
	}
	c.mu.Unlock()
	return nil
}

// GetProfile fetches a PSN account's public profile by online_id.
func (c *Client) GetProfile(ctx context.Context, onlineID string) (domain.UserPSNProfile, error) {
	var raw struct {
		OnlineID  string `json:"onlineId"`
		NpID      string `json:"accountId"`
		Region    string `json:"region"`
		AvatarURL string `json:"avatarUrl"`
		AboutMe   string `json:"aboutMe"`
		Languages []string `json:"languagesUsed"`
		IsPlus    bool     `json:"isPlus"`
		Trophy    struct {
			Level          uint32 `json:"trophyLevel"`
			Progress       uint32 `json:"progress"`
			EarnedPlatinum uint32 `json:"earnedPlatinum"`
			EarnedGold     uint32 `json:"earnedGold"`
			EarnedSilver   uint32 `json:"earnedSilver"`
			EarnedBronze   uint32 `json:"earnedBronze"`
		} `json:"trophySummary"`
	}

	path := fmt.Sprintf("%s/userProfile/v1/users/%s/profile", baseURL, url.PathEscape(onlineID))
	if err := c.get(ctx, path, &raw); err != nil {
		return domain.UserPSNProfile{}, err
	}

	return domain.UserPSNProfile{
		OnlineID:      raw.OnlineID,
		NpID:          raw.NpID,
		Region:        raw.Region,
		AvatarURL:     raw.AvatarURL,
		AboutMe:       raw.AboutMe,
		LanguagesUsed: raw.Languages,
		IsPlus:        raw.IsPlus,
		TrophySummary: domain.TrophySummary{
			Level:          raw.Trophy.Level,
			Progress:       raw.Trophy.Progress,
			EarnedPlatinum: raw.Trophy.EarnedPlatinum,
			EarnedGold:     raw.Trophy.EarnedGold,
			EarnedSilver:   raw.Trophy.EarnedSilver,
			EarnedBronze:   raw.Trophy.EarnedBronze,
		},
	}, nil
}

// GetTitles fetches one page (100 rows) of trophy-title progress
// starting at offset.
func (c *Client) GetTitles(ctx context.Context, onlineID string, offset uint32) (psnqueue.TitlesPage, error) {
	var raw struct {
		TotalResults uint32 `json:"totalResults"`
		TrophyTitles []struct {
			NpCommunicationID string    `json:"npCommunicationId"`
			Progress          uint32    `json:"progress"`
			EarnedPlatinum    uint32    `json:"earnedPlatinum"`
			EarnedGold        uint32    `json:"earnedGold"`
			EarnedSilver      uint32    `json:"earnedSilver"`
			EarnedBronze      uint32    `json:"earnedBronze"`
			LastUpdateDate    time.Time `json:"lastUpdatedDateTime"`
		} `json:"trophyTitles"`
	}

	path := fmt.Sprintf("%s/trophy/v1/users/%s/trophyTitles?offset=%d", baseURL, url.PathEscape(onlineID), offset)
	if err := c.get(ctx, path, &raw); err != nil {
		return psnqueue.TitlesPage{}, err
	}

	page := psnqueue.TitlesPage{TotalResults: raw.TotalResults}
	for _, t := range raw.TrophyTitles {
		page.Titles = append(page.Titles, domain.UserTrophyTitle{
			NpCommunicationID: t.NpCommunicationID,
			Progress:          t.Progress,
			EarnedPlatinum:    t.EarnedPlatinum,
			EarnedGold:        t.EarnedGold,
			EarnedSilver:      t.EarnedSilver,
			EarnedBronze:      t.EarnedBronze,
			LastUpdateDate:    t.LastUpdateDate,
		})
	}
	return page, nil
}

// GetTrophySet fetches the full trophy list for one game.
func (c *Client) GetTrophySet(ctx context.Context, onlineID, npCommunicationID string) (psnqueue.TrophySetPage, error) {
	var raw struct {
		Trophies []struct {
			TrophyID   uint32     `json:"trophyId"`
			EarnedDate *time.Time `json:"earnedDateTime,omitempty"`
		} `json:"trophies"`
	}

	path := fmt.Sprintf("%s/trophy/v1/users/%s/npCommunicationIds/%s/trophies",
		baseURL, url.PathEscape(onlineID), url.PathEscape(npCommunicationID))
	if err := c.get(ctx, path, &raw); err != nil {
		return psnqueue.TrophySetPage{}, err
	}

	page := psnqueue.TrophySetPage{}
	for _, t := range raw.Trophies {
		page.Trophies = append(page.Trophies, domain.Trophy{
			TrophyID:   t.TrophyID,
			EarnedDate: t.EarnedDate,
		})
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &apierr.InvalidURL{URL: rawURL}
	}

	c.mu.RLock()
	tok := c.token
	c.mu.RUnlock()
	if tok == nil {
		return apierr.ErrUnauthorized
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	return c.doJSON(req, out)
}

func newFormBody(form url.Values) io.Reader {
	return strings.NewReader(form.Encode())
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("psnclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("psnclient: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return apierr.ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("psnclient: psn api returned %d: %s", resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("psnclient: decode response: %w", err)
	}
	return nil
}
