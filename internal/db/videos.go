package db

import (
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

func (s *Store) CreateVideo(filename, originalName, sha256 string, sizeBytes int64, description, category *string) (model.Video, error) {
	conn, err := s.handle()
	if err != nil {
		return model.Video{}, err
	}
	res, err := conn.Exec(`
		INSERT INTO videos (filename, original_name, sha256, size_bytes, description, category)
		VALUES (?, ?, ?, ?, ?, ?)`,
		filename, originalName, sha256, sizeBytes, description, category)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("failed to insert video")
		return model.Video{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Video{}, err
	}
	return s.GetVideoByID(int(id))
}

func (s *Store) GetVideoByID(id int) (model.Video, error) {
	conn, err := s.handle()
	if err != nil {
		return model.Video{}, err
	}
	var v model.Video
	err = conn.Get(&v, `
		SELECT id, filename, original_name, sha256, size_bytes, description, category, created_at
		FROM videos
		WHERE id = ?`, id)
	return v, err
}

func (s *Store) GetVideoByFilename(filename string) (model.Video, error) {
	conn, err := s.handle()
	if err != nil {
		return model.Video{}, err
	}
	var v model.Video
	err = conn.Get(&v, `
		SELECT id, filename, original_name, sha256, size_bytes, description, category, created_at
		FROM videos
		WHERE filename = ?`, filename)
	return v, err
}

func (s *Store) ListVideos() ([]model.Video, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var out []model.Video
	err = conn.Select(&out, `
		SELECT id, filename, original_name, sha256, size_bytes, description, category, created_at
		FROM videos
		ORDER BY id`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list videos")
	}
	return out, err
}

// ListVideoFilenames returns the catalog side of the integrity comparison.
func (s *Store) ListVideoFilenames() ([]string, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var names []string
	err = conn.Select(&names, `SELECT filename FROM videos ORDER BY filename`)
	return names, err
}

func (s *Store) UpdateVideo(id int, description, category *string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`
		UPDATE videos
		SET description = COALESCE(?, description),
		    category    = COALESCE(?, category)
		WHERE id = ?`,
		description, category, id)
	if err != nil {
		log.Error().Err(err).Int("id", id).Msg("failed to update video")
	}
	return err
}

// DeleteVideo removes the catalog row and every playlist-membership row that
// references it, atomically. The playlists themselves remain. Returns the
// on-disk filename so the caller can remove the file.
func (s *Store) DeleteVideo(id int) (string, error) {
	v, err := s.GetVideoByID(id)
	if err != nil {
		return "", err
	}
	err = s.withTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`DELETE FROM playlist_items WHERE video_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM videos WHERE id = ?`, id)
		return err
	})
	if err != nil {
		log.Error().Err(err).Int("id", id).Msg("failed to delete video")
		return "", err
	}
	return v.Filename, nil
}

// DeleteVideoByFilename removes a catalog row (memberships first, to respect
// the foreign key) for the integrity repair pass.
func (s *Store) DeleteVideoByFilename(filename string) error {
	return s.withTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`
			DELETE FROM playlist_items
			WHERE video_id IN (SELECT id FROM videos WHERE filename = ?)`, filename); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM videos WHERE filename = ?`, filename)
		return err
	})
}
