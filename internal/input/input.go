// Package input reads the AniList IDs a run should process.
package input

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"seasonmap/internal/logging"
)

// LoadIDs reads one AniList ID per line from path. Blank lines are ignored
// and lines that are not plain non-negative integers are skipped with a
// warning.
func LoadIDs(path string, logger *slog.Logger) ([]int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer file.Close()
	return ParseIDs(file, logger)
}

// ParseIDs applies the LoadIDs rules to any reader.
func ParseIDs(r io.Reader, logger *slog.Logger) ([]int64, error) {
	logger = logging.NewComponentLogger(logger, "input")

	var ids []int64
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, ok := parseID(line)
		if !ok {
			logging.WarnWithContext(logger, "skipping invalid id", "input_invalid_line",
				logging.Int("line", lineNumber),
				logging.String("value", line),
				logging.String(logging.FieldErrorHint, "each line must contain a single AniList id"),
				logging.String(logging.FieldImpact, "line ignored"))
			continue
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ids, nil
}

// parseID accepts only ASCII digits, so "+5" and "-5" are rejected.
func parseID(value string) (int64, bool) {
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
