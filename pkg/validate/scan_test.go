package validate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infraworks/subpack/pkg/validate"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestTextScanner_ScanForKeywords(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		content string
		phrases []string
		want    []string
	}{
		"case insensitive hit": {
			content: "Stage 2 Design Development Submittal",
			phrases: []string{"STAGE 2", "FINAL"},
			want:    []string{"STAGE 2"},
		},
		"all found": {
			content: "PRELIMINARY plans for the STAGE 1 FIELD CHECK",
			phrases: []string{"STAGE 1", "PRELIMINARY", "FIELD CHECK"},
			want:    []string{"STAGE 1", "PRELIMINARY", "FIELD CHECK"},
		},
		"none found": {
			content: "unrelated text",
			phrases: []string{"RFC"},
			want:    nil,
		},
		"no phrases": {
			content: "anything",
			phrases: nil,
			want:    nil,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := validate.NewTextScanner(0)
			path := writeDoc(t, "doc.txt", tc.content)

			found, err := s.ScanForKeywords(context.Background(), path, tc.phrases)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, found)
		})
	}
}

func TestTextScanner_RespectsMaxBytes(t *testing.T) {
	t.Parallel()

	// The phrase sits beyond the scan bound, so it must not be found.
	content := strings.Repeat("x", 2048) + "STAGE 2"
	path := writeDoc(t, "big.txt", content)

	s := validate.NewTextScanner(1024)

	found, err := s.ScanForKeywords(context.Background(), path, []string{"STAGE 2"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTextScanner_MissingFile(t *testing.T) {
	t.Parallel()

	s := validate.NewTextScanner(0)

	_, err := s.ScanForKeywords(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), []string{"RFC"})
	require.Error(t, err)
}

func TestTextScanner_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := validate.NewTextScanner(0)
	path := writeDoc(t, "doc.txt", "STAGE 2")

	_, err := s.ScanForKeywords(ctx, path, []string{"STAGE 2"})
	require.ErrorIs(t, err, context.Canceled)
}
