// Package maintenance implements the administrator store-file actions:
// replacing the live database from an upload and resetting the system to a
// blank state. Both accept a brief unavailability window instead of a full
// quiesce protocol; they are rare, operator-invoked operations.
package maintenance

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/storage"
)

// sqliteMagic is the 16-byte header every SQLite database file starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

// ErrNotADatabase is returned when a restore upload fails header validation.
var ErrNotADatabase = errors.New("uploaded file is not a SQLite database")

type Manager struct {
	store  *db.Store
	videos *storage.VideoStore
}

func NewManager(store *db.Store, videos *storage.VideoStore) *Manager {
	return &Manager{store: store, videos: videos}
}

// DatabasePath is where the raw store file can be read for download.
func (m *Manager) DatabasePath() string {
	return m.store.Path()
}

// Restore replaces the live store file with the uploaded content. The upload
// is validated by its magic header before any existing file is touched, the
// previous file is preserved under a .pre-restore suffix, and WAL/SHM side
// files are removed before the swap so the replacement opens clean.
func (m *Manager) Restore(upload io.Reader) error {
	path := m.store.Path()
	tmp := path + ".restore-upload"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("stage restore upload: %w", err)
	}
	_, copyErr := io.Copy(f, upload)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp)
		if copyErr != nil {
			return fmt.Errorf("stage restore upload: %w", copyErr)
		}
		return fmt.Errorf("stage restore upload: %w", closeErr)
	}

	header := make([]byte, len(sqliteMagic))
	tf, err := os.Open(tmp)
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	n, _ := io.ReadFull(tf, header)
	_ = tf.Close()
	if n != len(sqliteMagic) || !bytes.Equal(header, sqliteMagic) {
		_ = os.Remove(tmp)
		return ErrNotADatabase
	}

	if err := m.store.Close(); err != nil {
		log.Error().Err(err).Msg("restore: closing store failed")
	}

	// safety net: keep the outgoing file
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".pre-restore"); err != nil {
			_ = os.Remove(tmp)
			reopenErr := m.store.Open()
			if reopenErr != nil {
				log.Error().Err(reopenErr).Msg("restore: reopen after failure")
			}
			return fmt.Errorf("preserve previous database: %w", err)
		}
	}
	removeSideFiles(path)

	if err := os.Rename(tmp, path); err != nil {
		// roll the swap back: put the previous file where it was and
		// reopen, so the process keeps serving its old state
		_ = os.Remove(tmp)
		if _, statErr := os.Stat(path + ".pre-restore"); statErr == nil {
			if rbErr := os.Rename(path+".pre-restore", path); rbErr != nil {
				log.Error().Err(rbErr).Msg("restore: could not roll back previous database")
			}
		}
		if reopenErr := m.store.Open(); reopenErr != nil {
			log.Error().Err(reopenErr).Msg("restore: reopen after failure")
		}
		return fmt.Errorf("install restored database: %w", err)
	}

	if err := m.store.Open(); err != nil {
		return fmt.Errorf("open restored database: %w", err)
	}
	log.Info().Str("path", path).Msg("database restored from upload")
	return nil
}

// Reset closes the store, deletes the database with its side files and every
// video file, and reopens against a fresh database. The schema migrations
// re-seed the default admin account on the reopen.
func (m *Manager) Reset() error {
	if err := m.store.Close(); err != nil {
		log.Error().Err(err).Msg("reset: closing store failed")
	}

	path := m.store.Path()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove database: %w", err)
	}
	removeSideFiles(path)

	if err := os.RemoveAll(m.videos.Dir()); err != nil {
		return fmt.Errorf("remove video directory: %w", err)
	}
	if err := os.MkdirAll(m.videos.Dir(), 0o755); err != nil {
		return fmt.Errorf("recreate video directory: %w", err)
	}

	if err := m.store.Open(); err != nil {
		return fmt.Errorf("open fresh database: %w", err)
	}
	log.Info().Msg("system reset to blank state")
	return nil
}

// removeSideFiles deletes the WAL and shared-memory files next to a store
// file, if present.
func removeSideFiles(path string) {
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			log.Error().Err(err).Str("file", path+suffix).Msg("failed to remove side file")
		}
	}
}
