// Package filesystem stores sound clips as files in a single directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/core/ports"

	"github.com/spf13/afero"
)

type Store struct {
	fs  afero.Fs
	dir string
	ext string
}

var _ ports.SoundStorage = (*Store)(nil)

func NewStore(fs afero.Fs, dir, ext string) *Store {
	return &Store{fs: fs, dir: dir, ext: ext}
}

// List returns one sound per file in the directory carrying the clip
// extension. Hidden files and subdirectories are ignored.
func (s *Store) List(ctx context.Context) ([]domain.Sound, error) {
	exists, err := afero.DirExists(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.dir, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", s.dir, domain.ErrStorageUnavailable)
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.dir, err)
	}

	sounds := make([]domain.Sound, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, ok := s.soundName(entry)
		if !ok {
			continue
		}
		sounds = append(sounds, domain.NewFileSound(name, filepath.Join(s.dir, entry.Name()), s.open))
	}
	return sounds, nil
}

func (s *Store) soundName(entry os.FileInfo) (string, bool) {
	if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
		return "", false
	}
	name, ok := strings.CutSuffix(entry.Name(), s.ext)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

func (s *Store) open(path string) (io.ReadCloser, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}
	return f, nil
}

// Save writes content to <dir>/<name><ext>. Existing files are never replaced.
func (s *Store) Save(ctx context.Context, name string, content io.Reader) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, name+s.ext)
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("sound %q: %w", name, domain.ErrDuplicate)
		}
		return fmt.Errorf("create sound file: %w", err)
	}

	_, copyErr := io.Copy(f, contextReader{ctx: ctx, r: content})
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		if rmErr := s.fs.Remove(path); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
		return fmt.Errorf("write sound file: %w", err)
	}
	return nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
