package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"seasonmap/internal/httpretry"
	"seasonmap/internal/logging"
)

// bearerThreshold separates v3 keys (32 hex chars) from v4 JWT tokens.
const bearerThreshold = 60

const errorExcerptLimit = 200

// Season describes one entry of a TV show's seasons array. AirDate is empty
// when TMDB omits it, nulls it, or sends something other than a string.
type Season struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SeasonNumber int    `json:"season_number"`
	AirDate      string `json:"air_date"`
	EpisodeCount int    `json:"episode_count"`
}

type tvDetails struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Seasons []tvSeason `json:"seasons"`
}

type tvSeason struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	SeasonNumber int     `json:"season_number"`
	AirDate      airDate `json:"air_date"`
	EpisodeCount int     `json:"episode_count"`
}

// airDate accepts any JSON value so one odd entry cannot sink the payload.
// Non-string values decode as empty.
type airDate string

func (d *airDate) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		*d = ""
		return nil
	}
	*d = airDate(value)
	return nil
}

// Requester is the subset of httpretry.Executor used by the client.
type Requester interface {
	Do(ctx context.Context, method, rawURL string, opts httpretry.Options) (*httpretry.Response, bool)
}

// Client provides access to the TMDB API for season lookups.
type Client struct {
	apiKey    string
	baseURL   string
	requester Requester
	logger    *slog.Logger
}

// New creates a TMDB client.
func New(apiKey, baseURL string, requester Requester, logger *slog.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	if requester == nil {
		return nil, errors.New("tmdb requester required")
	}
	return &Client{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		requester: requester,
		logger:    logging.NewComponentLogger(logger, "tmdb"),
	}, nil
}

// UsesBearer reports whether the stored credential is sent as a bearer token.
func (c *Client) UsesBearer() bool {
	return IsBearerToken(c.apiKey)
}

// IsBearerToken reports whether key looks like a v4 read access token rather
// than a v3 api key.
func IsBearerToken(key string) bool {
	return len(strings.TrimSpace(key)) > bearerThreshold
}

// FetchSeasons returns the seasons of a TV show in TMDB order. Missing shows,
// HTTP errors, and malformed payloads all yield an empty slice.
func (c *Client) FetchSeasons(ctx context.Context, showID int64) []Season {
	if showID <= 0 {
		return nil
	}
	endpoint := fmt.Sprintf("%s/tv/%d", c.baseURL, showID)

	resp, ok := c.requester.Do(ctx, http.MethodGet, endpoint, c.requestOptions())
	if !ok {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		c.logger.Info("tmdb show not found",
			logging.String(logging.FieldEventType, "tmdb_not_found"),
			logging.Int64(logging.FieldTMDBShowID, showID))
		return nil
	default:
		logging.ErrorWithContext(c.logger, "tmdb api error", "tmdb_http_error",
			logging.Int64(logging.FieldTMDBShowID, showID),
			logging.Int("status", resp.StatusCode),
			logging.String("body", excerpt(resp.Body)),
			logging.String(logging.FieldErrorHint, "verify tmdb.api_key and the show id"))
		return nil
	}

	var payload tvDetails
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		logging.ErrorWithContext(c.logger, "failed to parse tmdb response", "tmdb_parse_failed",
			logging.Int64(logging.FieldTMDBShowID, showID),
			logging.Error(err))
		return nil
	}

	seasons := make([]Season, 0, len(payload.Seasons))
	for _, entry := range payload.Seasons {
		seasons = append(seasons, Season{
			ID:           entry.ID,
			Name:         entry.Name,
			SeasonNumber: entry.SeasonNumber,
			AirDate:      string(entry.AirDate),
			EpisodeCount: entry.EpisodeCount,
		})
	}
	return seasons
}

// HealthCheck verifies that TMDB is reachable and accepts the credential.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, ok := c.requester.Do(ctx, http.MethodGet, c.baseURL+"/configuration", c.requestOptions())
	if !ok {
		return errors.New("tmdb unreachable")
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("tmdb rejected the api key (%d)", resp.StatusCode)
	default:
		return fmt.Errorf("tmdb returned %d", resp.StatusCode)
	}
}

func (c *Client) requestOptions() httpretry.Options {
	opts := httpretry.Options{Header: http.Header{"Accept": []string{"application/json"}}}
	if c.UsesBearer() {
		opts.Header.Set("Authorization", "Bearer "+c.apiKey)
	} else {
		opts.Query = url.Values{"api_key": []string{c.apiKey}}
	}
	return opts
}

func excerpt(body []byte) string {
	text := strings.ToValidUTF8(string(body), "")
	if len(text) > errorExcerptLimit {
		text = strings.ToValidUTF8(text[:errorExcerptLimit], "")
	}
	return text
}
