package showindex

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"seasonmap/internal/httpretry"
	"seasonmap/internal/logging"
)

// Requester is the subset of httpretry.Executor used to download the dataset.
type Requester interface {
	Do(ctx context.Context, method, rawURL string, opts httpretry.Options) (*httpretry.Response, bool)
}

// Entry pairs an AniList ID with its TMDB show ID.
type Entry struct {
	AniListID  int64
	TMDBShowID int64
}

// Index is a read-only AniList to TMDB show mapping.
type Index struct {
	shows map[int64]int64
	order []int64
}

// Resolve returns the TMDB show ID for an AniList ID.
func (i *Index) Resolve(anilistID int64) (int64, bool) {
	if i == nil {
		return 0, false
	}
	showID, ok := i.shows[anilistID]
	return showID, ok
}

// Len reports the number of mapped AniList IDs.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.shows)
}

// Entries returns every mapping in the order AniList IDs first appeared in
// the dataset.
func (i *Index) Entries() []Entry {
	if i == nil {
		return nil
	}
	entries := make([]Entry, 0, len(i.order))
	for _, id := range i.order {
		entries = append(entries, Entry{AniListID: id, TMDBShowID: i.shows[id]})
	}
	return entries
}

// FromEntries builds an Index from raw pairs. Later duplicates overwrite
// earlier ones but keep the original position.
func FromEntries(entries []Entry) *Index {
	idx := &Index{shows: make(map[int64]int64, len(entries))}
	for _, e := range entries {
		if _, seen := idx.shows[e.AniListID]; !seen {
			idx.order = append(idx.order, e.AniListID)
		}
		idx.shows[e.AniListID] = e.TMDBShowID
	}
	return idx
}

// Build downloads and parses the mapping dataset. Failures are logged and
// yield an empty Index.
func Build(ctx context.Context, requester Requester, url string, logger *slog.Logger) *Index {
	logger = logging.NewComponentLogger(logger, "showindex")
	logger.Info("downloading show mapping data", logging.String("url", url))

	resp, ok := requester.Do(ctx, http.MethodGet, url, httpretry.Options{})
	if !ok || resp.StatusCode != http.StatusOK {
		attrs := []logging.Attr{logging.String("url", url)}
		if resp != nil {
			attrs = append(attrs, logging.Int("status", resp.StatusCode))
		}
		logging.ErrorWithContext(logger, "failed to download mapping file", "showindex_download_failed",
			append(attrs, logging.String(logging.FieldErrorHint, "check network access to the mapping url"))...)
		return FromEntries(nil)
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		logging.ErrorWithContext(logger, "failed to parse mapping file", "showindex_parse_failed",
			logging.Error(err))
		return FromEntries(nil)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		anilistID, ok := parseID(item["anilist_id"])
		if !ok {
			continue
		}
		showID, ok := parseID(item["themoviedb_id"])
		if !ok {
			continue
		}
		entries = append(entries, Entry{AniListID: anilistID, TMDBShowID: showID})
	}
	idx := FromEntries(entries)
	logger.Info("loaded show mappings", logging.Int("mapping_count", idx.Len()))
	return idx
}

// parseID accepts a JSON integer or a quoted integer. Null, missing, and
// non-numeric values are rejected.
func parseID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		number = json.Number(strings.TrimSpace(text))
	}
	id, err := strconv.ParseInt(number.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Loader lazily builds the Index and keeps the first non-empty result.
type Loader struct {
	requester Requester
	url       string
	logger    *slog.Logger

	mu    sync.Mutex
	index *Index
}

// NewLoader creates a Loader for the given dataset URL.
func NewLoader(requester Requester, url string, logger *slog.Logger) *Loader {
	return &Loader{requester: requester, url: url, logger: logger}
}

// Load returns the cached Index, building it on first use.
func (l *Loader) Load(ctx context.Context) *Index {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index != nil {
		return l.index
	}
	idx := Build(ctx, l.requester, l.url, l.logger)
	if idx.Len() > 0 {
		l.index = idx
	}
	return idx
}

// Resolve looks up a single AniList ID, loading the Index if needed.
func (l *Loader) Resolve(ctx context.Context, anilistID int64) (int64, bool) {
	return l.Load(ctx).Resolve(anilistID)
}
