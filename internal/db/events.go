package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

// AppendPlayEvent records one playback. Rows are append-only; nothing ever
// updates or deletes them short of a full store reset.
func (s *Store) AppendPlayEvent(deviceName, filename string, videoID *int, playedAt time.Time, durationSecs *int, location *string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`
		INSERT INTO play_events (device_name, filename, video_id, played_at, duration_secs, location)
		VALUES (?, ?, ?, ?, ?, ?)`,
		deviceName, filename, videoID, playedAt, durationSecs, location)
	if err != nil {
		log.Error().Err(err).Str("device", deviceName).Msg("failed to append play event")
	}
	return err
}

// ListPlayEvents returns history, optionally filtered by device and time
// range, newest first.
func (s *Store) ListPlayEvents(deviceName *string, from, to *time.Time, limit int) ([]model.PlayEvent, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	q := `
		SELECT id, device_name, filename, video_id, played_at, duration_secs, location
		FROM play_events
		WHERE 1 = 1`
	args := []any{}
	if deviceName != nil {
		q += ` AND device_name = ?`
		args = append(args, *deviceName)
	}
	if from != nil {
		q += ` AND played_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		q += ` AND played_at < ?`
		args = append(args, *to)
	}
	q += ` ORDER BY played_at DESC, id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	var out []model.PlayEvent
	if err := conn.Select(&out, q, args...); err != nil {
		log.Error().Err(err).Msg("failed to list play events")
		return nil, err
	}
	return out, nil
}
