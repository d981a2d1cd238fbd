package db

import (
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

func (s *Store) CreateLocation(name string) (model.Location, error) {
	conn, err := s.handle()
	if err != nil {
		return model.Location{}, err
	}
	res, err := conn.Exec(`INSERT INTO locations (name) VALUES (?)`, name)
	if err != nil {
		if !IsConflict(err) {
			log.Error().Err(err).Str("name", name).Msg("failed to insert location")
		}
		return model.Location{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Location{}, err
	}
	var loc model.Location
	err = conn.Get(&loc, `SELECT id, name, created_at FROM locations WHERE id = ?`, id)
	return loc, err
}

func (s *Store) ListLocations() ([]model.Location, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var out []model.Location
	err = conn.Select(&out, `SELECT id, name, created_at FROM locations ORDER BY name`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list locations")
	}
	return out, err
}

// DeleteLocation removes a tag row. Devices keep the label as free text, so
// nothing cascades.
func (s *Store) DeleteLocation(id int) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`DELETE FROM locations WHERE id = ?`, id)
	return err
}
