package db

import (
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

func (s *Store) CreatePlaylist(name string, description *string) (model.Playlist, error) {
	conn, err := s.handle()
	if err != nil {
		return model.Playlist{}, err
	}
	res, err := conn.Exec(`
		INSERT INTO playlists (name, description)
		VALUES (?, ?)`, name, description)
	if err != nil {
		if !IsConflict(err) {
			log.Error().Err(err).Str("name", name).Msg("failed to insert playlist")
		}
		return model.Playlist{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Playlist{}, err
	}
	return s.GetPlaylistByID(int(id))
}

func (s *Store) GetPlaylistByID(id int) (model.Playlist, error) {
	conn, err := s.handle()
	if err != nil {
		return model.Playlist{}, err
	}
	var p model.Playlist
	if err := conn.Get(&p, `
		SELECT id, name, description, created_at
		FROM playlists
		WHERE id = ?`, id); err != nil {
		return model.Playlist{}, err
	}
	items, err := s.ListPlaylistItems(id)
	if err != nil {
		return p, err
	}
	p.Items = items
	return p, nil
}

func (s *Store) ListPlaylists() ([]model.Playlist, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var out []model.Playlist
	if err := conn.Select(&out, `
		SELECT id, name, description, created_at
		FROM playlists
		ORDER BY id`); err != nil {
		log.Error().Err(err).Msg("failed to list playlists")
		return nil, err
	}
	for i := range out {
		items, err := s.ListPlaylistItems(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *Store) UpdatePlaylist(id int, name, description *string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`
		UPDATE playlists
		SET name        = COALESCE(?, name),
		    description = COALESCE(?, description)
		WHERE id = ?`,
		name, description, id)
	if err != nil && !IsConflict(err) {
		log.Error().Err(err).Int("id", id).Msg("failed to update playlist")
	}
	return err
}

// DeletePlaylist removes the playlist and its membership rows. Devices that
// referenced it are unassigned, not deleted (ON DELETE SET NULL).
func (s *Store) DeletePlaylist(id int) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		log.Error().Err(err).Int("id", id).Msg("failed to delete playlist")
	}
	return err
}

func (s *Store) ListPlaylistItems(playlistID int) ([]model.PlaylistItem, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var items []model.PlaylistItem
	err = conn.Select(&items, `
		SELECT pi.id, pi.playlist_id, pi.video_id, pi.position, v.filename
		FROM playlist_items pi
		JOIN videos v ON v.id = pi.video_id
		WHERE pi.playlist_id = ?
		ORDER BY pi.position, pi.id`, playlistID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("failed to list playlist items")
	}
	return items, err
}

// PlaylistEntry is one requested membership row for ReplacePlaylistItems.
// Positions need not be contiguous or unique, and the same video may appear
// more than once.
type PlaylistEntry struct {
	VideoID  int
	Position int
}

// ReplacePlaylistItems swaps the full membership of a playlist in one
// transaction: either every row lands or none does.
func (s *Store) ReplacePlaylistItems(playlistID int, entries []PlaylistEntry) error {
	err := s.withTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`DELETE FROM playlist_items WHERE playlist_id = ?`, playlistID); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := tx.Exec(`
				INSERT INTO playlist_items (playlist_id, video_id, position)
				VALUES (?, ?, ?)`,
				playlistID, e.VideoID, e.Position); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("failed to replace playlist items")
	}
	return err
}
