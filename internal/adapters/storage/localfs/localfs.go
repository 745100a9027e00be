package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage writes blobs under a root directory and serves them from baseURL.
type Storage struct {
	root    string
	baseURL string
}

func New(root, baseURL string) *Storage {
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &Storage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Storage) Name() string { return "local" }

func (s *Storage) Root() string { return s.root }

func (s *Storage) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.ToSlash(filepath.Clean("/" + key))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("localfs: empty key")
	}
	full := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return s.baseURL + "/" + clean, nil
}
