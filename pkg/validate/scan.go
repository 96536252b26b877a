package validate

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Scanner checks a document for expected keyword phrases and returns the
// phrases it found. Implementations are best-effort; a scan error degrades to
// a warning, never a validation failure.
type Scanner interface {
	ScanForKeywords(ctx context.Context, path string, phrases []string) ([]string, error)
}

// TextScanner is the default [Scanner]: a bounded, case-insensitive substring
// search over the leading bytes of a file. It does not parse document
// structure, so phrases stored compressed inside a PDF will not be found;
// callers needing that inject their own [Scanner].
type TextScanner struct {
	// MaxBytes bounds how much of the file is read.
	MaxBytes int64
}

// chunkSize is the read granularity; context cancellation is checked between
// chunks.
const chunkSize = 256 << 10

// NewTextScanner creates a [TextScanner] reading at most maxBytes per file.
func NewTextScanner(maxBytes int64) *TextScanner {
	if maxBytes <= 0 {
		maxBytes = 4 << 20
	}

	return &TextScanner{MaxBytes: maxBytes}
}

func (s *TextScanner) ScanForKeywords(ctx context.Context, path string, phrases []string) ([]string, error) {
	if len(phrases) == 0 {
		return nil, nil
	}

	f, err := os.Open(path) //nolint:gosec // G304: Path from the validated tree.
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	remaining := make(map[string]string, len(phrases))
	for _, p := range phrases {
		remaining[p] = strings.ToUpper(p)
	}

	var (
		found []string
		// Keep an overlap tail so phrases spanning a chunk boundary still hit.
		tail []byte
		buf  = make([]byte, chunkSize)
		read int64
	)

	for read < s.MaxBytes && len(remaining) > 0 {
		err := ctx.Err()
		if err != nil {
			return found, fmt.Errorf("scan canceled: %w", err)
		}

		limit := int64(len(buf))
		if rest := s.MaxBytes - read; rest < limit {
			limit = rest
		}

		n, readErr := f.Read(buf[:limit])
		if n > 0 {
			read += int64(n)
			window := strings.ToUpper(string(tail) + string(buf[:n]))

			for phrase, upper := range remaining {
				if strings.Contains(window, upper) {
					found = append(found, phrase)
					delete(remaining, phrase)
				}
			}

			tail = overlapTail(buf[:n], remaining)
		}

		if readErr != nil {
			if readErr == io.EOF {
				break
			}

			return found, fmt.Errorf("read document: %w", readErr)
		}
	}

	return found, nil
}

// overlapTail returns the trailing bytes to carry into the next chunk, sized
// to the longest phrase still being searched for.
func overlapTail(chunk []byte, remaining map[string]string) []byte {
	maxLen := 0
	for _, upper := range remaining {
		if len(upper) > maxLen {
			maxLen = len(upper)
		}
	}

	if maxLen <= 1 || len(chunk) == 0 {
		return nil
	}

	keep := maxLen - 1
	if keep > len(chunk) {
		keep = len(chunk)
	}

	tail := make([]byte, keep)
	copy(tail, chunk[len(chunk)-keep:])

	return tail
}
