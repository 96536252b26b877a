package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
)

// Algorithm selects the manifest checksum function.
type Algorithm string

const (
	AlgorithmSHA256 Algorithm = "sha256"
	AlgorithmBLAKE3 Algorithm = "blake3"
)

// ErrUnknownAlgorithm is returned for unsupported checksum algorithm names.
var ErrUnknownAlgorithm = errors.New("unknown checksum algorithm")

// ParseAlgorithm resolves an algorithm name from configuration.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(s)) {
	case AlgorithmSHA256, "":
		return AlgorithmSHA256, nil
	case AlgorithmBLAKE3:
		return AlgorithmBLAKE3, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmBLAKE3:
		return blake3.New(), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(a))
}

// HashFile computes the hex checksum of a file, streaming its content.
func (a Algorithm) HashFile(path string) (string, error) {
	h, err := a.newHash()
	if err != nil {
		return "", err
	}

	f, err := os.Open(path) //nolint:gosec // G304: Path from the validated tree.
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	_, err = io.Copy(h, f)
	if err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
