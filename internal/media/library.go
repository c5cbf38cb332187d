// Package media writes generated images to the local photo directory and
// stages copies for sharing.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"styleshot/internal/domain"
	"styleshot/internal/infra"
)

const albumDir = "StyleShot"

// PermissionChecker answers whether the library may write into the media
// root. Denial is a normal outcome, not an error.
type PermissionChecker interface {
	CanWrite(ctx context.Context) (bool, error)
}

// GrantAll always permits writes. The default when no platform checker is
// wired in.
type GrantAll struct{}

func (GrantAll) CanWrite(context.Context) (bool, error) { return true, nil }

// Sharer receives a staged file path and hands it off somewhere useful. The
// default implementation only logs; a platform integration would open a
// share sheet or upload the file.
type Sharer interface {
	Share(ctx context.Context, path string) error
}

type logSharer struct {
	logger infra.Logger
}

func (s logSharer) Share(_ context.Context, path string) error {
	s.logger.Info().Str("path", path).Msg("media: staged file ready to share")
	return nil
}

// Library saves and shares generated images under a single root directory.
type Library struct {
	root   string
	perms  PermissionChecker
	sharer Sharer
	logger infra.Logger
	now    func() time.Time
}

// Options configures a Library. Root is required; everything else has a
// working default.
type Options struct {
	Root   string
	Perms  PermissionChecker
	Sharer Sharer
	Logger *infra.Logger
	Now    func() time.Time
}

// NewLibrary initializes the media root and the album directory inside it.
func NewLibrary(opts Options) (*Library, error) {
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		return nil, errors.New("media: root directory is required")
	}
	if err := os.MkdirAll(filepath.Join(root, albumDir), 0o755); err != nil {
		return nil, fmt.Errorf("media: ensure album directory: %w", err)
	}
	l := &Library{
		root:   root,
		perms:  opts.Perms,
		sharer: opts.Sharer,
		now:    opts.Now,
	}
	if opts.Logger != nil {
		l.logger = *opts.Logger
	} else {
		l.logger = infra.Logger(zerolog.New(io.Discard))
	}
	if l.perms == nil {
		l.perms = GrantAll{}
	}
	if l.sharer == nil {
		l.sharer = logSharer{logger: l.logger}
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l, nil
}

// SaveImage decodes the payload and writes it into the album. The payload
// may carry a data URI prefix or be bare base64. Returns the absolute path
// of the written file. A denied permission check returns
// domain.ErrPermissionDenied and leaves the filesystem untouched.
func (l *Library) SaveImage(ctx context.Context, payload, style string, slot int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ok, err := l.perms.CanWrite(ctx)
	if err != nil {
		return "", fmt.Errorf("media: permission check: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("media library access is disabled, enable it to save images: %w", domain.ErrPermissionDenied)
	}

	data, err := decodePayload(payload)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("styleshot-%s-%d-%d.jpg", sanitizeStyle(style), l.now().UnixMilli(), slot+1)
	path := filepath.Join(l.root, albumDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("media: write image: %w", err)
	}
	l.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("media: image saved")
	return path, nil
}

// ShareImage stages the payload under a throwaway name and passes it to the
// configured Sharer. The staged path is returned so callers can clean up or
// reuse it.
func (l *Library) ShareImage(ctx context.Context, payload string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := decodePayload(payload)
	if err != nil {
		return "", err
	}

	shareDir := filepath.Join(l.root, albumDir, "shared")
	if err := os.MkdirAll(shareDir, 0o755); err != nil {
		return "", fmt.Errorf("media: ensure share directory: %w", err)
	}
	path := filepath.Join(shareDir, uuid.NewString()+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("media: stage image: %w", err)
	}
	if err := l.sharer.Share(ctx, path); err != nil {
		return "", fmt.Errorf("media: share: %w", err)
	}
	return path, nil
}

// decodePayload accepts bare base64 or a full data URI.
func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("media: empty image payload: %w", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, fmt.Errorf("media: malformed data uri: %w", domain.ErrInvalidInput)
		}
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("media: decode image payload: %w", domain.ErrInvalidInput)
	}
	return data, nil
}

// sanitizeStyle keeps filenames boring: lowercase, no separators.
func sanitizeStyle(style string) string {
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		return "image"
	}
	var b strings.Builder
	for _, r := range style {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
