package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// VideoStore owns the directory of on-disk video files. Filenames are derived
// from the uploaded name and disambiguated with a numeric suffix on
// collision, so the catalog's filename column stays unique.
type VideoStore struct {
	dir string
}

func NewVideoStore(dir string) *VideoStore {
	return &VideoStore{dir: dir}
}

func (vs *VideoStore) Dir() string { return vs.dir }

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// normalize strips problematic characters from an uploaded filename.
func normalize(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(filepath.Base(original), ext)
	base = strings.ReplaceAll(base, " ", "_")
	base = unsafeChars.ReplaceAllString(base, "")
	if base == "" {
		base = "video"
	}
	return base + ext
}

// uniqueName picks a filename not yet present in the directory, appending
// -1, -2, ... before the extension until one is free.
func (vs *VideoStore) uniqueName(original string) (string, error) {
	name := normalize(original)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 1; ; i++ {
		_, err := os.Stat(filepath.Join(vs.dir, candidate))
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
	}
}

// Save streams src to a uniquely named file in the video directory, hashing
// the bytes on the way through. It returns the chosen filename, the hex
// SHA-256 digest, and the byte count. The file lands on disk before the
// caller inserts the catalog row, so a crash in between leaves an orphan for
// the integrity auditor rather than a catalog row pointing at nothing.
func (vs *VideoStore) Save(src io.Reader, originalName string) (filename, sha string, size int64, err error) {
	if err = os.MkdirAll(vs.dir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("create video directory: %w", err)
	}

	filename, err = vs.uniqueName(originalName)
	if err != nil {
		return "", "", 0, err
	}
	path := filepath.Join(vs.dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", 0, fmt.Errorf("create video file: %w", err)
	}

	hasher := sha256.New()
	size, err = io.Copy(io.MultiWriter(dst, hasher), src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			log.Error().Err(rmErr).Str("path", path).Msg("failed to remove partial upload")
		}
		return "", "", 0, fmt.Errorf("write video file: %w", err)
	}

	return filename, hex.EncodeToString(hasher.Sum(nil)), size, nil
}

// Delete removes one video file from disk.
func (vs *VideoStore) Delete(filename string) error {
	return os.Remove(filepath.Join(vs.dir, filename))
}

// Path returns the location of a stored video.
func (vs *VideoStore) Path(filename string) string {
	return filepath.Join(vs.dir, filename)
}

// List returns the filenames currently on disk. Dotfiles are ignored by
// convention.
func (vs *VideoStore) List() ([]string, error) {
	entries, err := os.ReadDir(vs.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
