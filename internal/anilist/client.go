package anilist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/text/unicode/norm"

	"seasonmap/internal/httpretry"
	"seasonmap/internal/logging"
)

const mediaQuery = `query ($id: Int) {
  Media (id: $id, type: ANIME) {
    startDate { year month day }
    title { romaji english }
  }
}`

const healthQuery = `query { Media (id: 1, type: ANIME) { id } }`

// Requester is the subset of httpretry.Executor used by the client.
type Requester interface {
	Do(ctx context.Context, method, rawURL string, opts httpretry.Options) (*httpretry.Response, bool)
}

// Media is the subset of an AniList media entry used for season matching.
// StartDate is YYYY-MM-DD; empty means the date is incomplete or unknown.
type Media struct {
	Title     string
	StartDate string
}

// HasStartDate reports whether year, month, and day were all known.
func (m Media) HasStartDate() bool { return m.StartDate != "" }

type fuzzyDate struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

type mediaTitle struct {
	Romaji  *string `json:"romaji"`
	English *string `json:"english"`
}

type mediaPayload struct {
	StartDate *fuzzyDate  `json:"startDate"`
	Title     *mediaTitle `json:"title"`
}

type queryResponse struct {
	Data *struct {
		Media *mediaPayload `json:"Media"`
	} `json:"data"`
}

// Client queries AniList for single media entries.
type Client struct {
	requester Requester
	url       string
	logger    *slog.Logger
}

// New creates an AniList client for the given GraphQL endpoint.
func New(requester Requester, url string, logger *slog.Logger) *Client {
	return &Client{
		requester: requester,
		url:       strings.TrimSpace(url),
		logger:    logging.NewComponentLogger(logger, "anilist"),
	}
}

// FetchMedia returns the start date and title for an AniList ID. Any
// transport or payload failure yields an empty Media.
func (c *Client) FetchMedia(ctx context.Context, anilistID int64) Media {
	body, err := json.Marshal(map[string]any{
		"query":     mediaQuery,
		"variables": map[string]any{"id": anilistID},
	})
	if err != nil {
		logging.ErrorWithContext(c.logger, "failed to encode anilist query", "anilist_encode_failed",
			logging.Int64(logging.FieldAniListID, anilistID), logging.Error(err))
		return Media{}
	}

	resp, ok := c.requester.Do(ctx, http.MethodPost, c.url, httpretry.Options{
		Header: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
		},
		Body: body,
	})
	if !ok || resp.StatusCode != http.StatusOK {
		attrs := []logging.Attr{logging.Int64(logging.FieldAniListID, anilistID)}
		if resp != nil {
			attrs = append(attrs, logging.Int("status", resp.StatusCode))
		}
		logging.ErrorWithContext(c.logger, "failed to fetch anilist data", "anilist_fetch_failed", attrs...)
		return Media{}
	}

	var payload queryResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		logging.ErrorWithContext(c.logger, "failed to parse anilist response", "anilist_parse_failed",
			logging.Int64(logging.FieldAniListID, anilistID), logging.Error(err))
		return Media{}
	}
	if payload.Data == nil || payload.Data.Media == nil {
		c.logger.Debug("anilist returned no media", logging.Int64(logging.FieldAniListID, anilistID))
		return Media{}
	}

	media := payload.Data.Media
	return Media{
		Title:     pickTitle(media.Title),
		StartDate: formatDate(media.StartDate),
	}
}

// HealthCheck verifies that the GraphQL endpoint answers a trivial query.
func (c *Client) HealthCheck(ctx context.Context) error {
	body, err := json.Marshal(map[string]any{"query": healthQuery})
	if err != nil {
		return fmt.Errorf("encode health query: %w", err)
	}
	resp, ok := c.requester.Do(ctx, http.MethodPost, c.url, httpretry.Options{
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	})
	if !ok {
		return fmt.Errorf("anilist unreachable at %s", c.url)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("anilist returned %d", resp.StatusCode)
	}
	return nil
}

// pickTitle prefers the english title and falls back to romaji.
func pickTitle(title *mediaTitle) string {
	if title == nil {
		return ""
	}
	for _, candidate := range []*string{title.English, title.Romaji} {
		if candidate == nil {
			continue
		}
		if value := strings.TrimSpace(norm.NFC.String(*candidate)); value != "" {
			return value
		}
	}
	return ""
}

// formatDate requires all three parts to be present and non-zero.
func formatDate(date *fuzzyDate) string {
	if date == nil || date.Year == nil || date.Month == nil || date.Day == nil {
		return ""
	}
	if *date.Year == 0 || *date.Month == 0 || *date.Day == 0 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", *date.Year, *date.Month, *date.Day)
}
