package usecase

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/phenrril/kitos/internal/domain"
)

type UploadUC struct {
	Blobs domain.BlobStore
	Now   func() time.Time
}

type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Key      string `json:"key"`
	Storage  string `json:"storage"`
}

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	unsafeName = regexp.MustCompile(`[^a-z0-9._-]`)
)

// SafeFileName lowercases, turns whitespace runs into "-" and drops anything outside [a-z0-9._-].
func SafeFileName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = spaceRun.ReplaceAllString(s, "-")
	s = unsafeName.ReplaceAllString(s, "")
	s = strings.Trim(s, ".")
	if s == "" {
		return "file"
	}
	return s
}

// BlobKey builds <slug>/<unix millis>_<safe name>.
func BlobKey(designSlug, fileName string, now time.Time) (key, stored string) {
	stored = fmt.Sprintf("%d_%s", now.UnixMilli(), SafeFileName(fileName))
	return SafeFileName(designSlug) + "/" + stored, stored
}

func (uc *UploadUC) Upload(ctx context.Context, designSlug string, f UploadFile) (*UploadResult, error) {
	designSlug = strings.TrimSpace(designSlug)
	if designSlug == "" {
		return nil, fmt.Errorf("%w: no design slug provided", domain.ErrValidation)
	}
	if len(f.Data) == 0 {
		return nil, fmt.Errorf("%w: no file provided", domain.ErrValidation)
	}
	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}
	key, stored := BlobKey(designSlug, f.Name, now())
	ct := f.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(f.Data)
	}
	url, err := uc.Blobs.Put(ctx, key, f.Data, ct)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}
	return &UploadResult{URL: url, Filename: stored, Key: key, Storage: uc.Blobs.Name()}, nil
}
