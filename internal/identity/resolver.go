// Package identity maps inbound device announcements onto exactly one
// canonical device record. The hardware identifier, when present, is a
// stronger key than the name: a device keeps its record and its play history
// across renames, and a legacy record adopts an identifier on first sight.
package identity

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

// Announcement is one inbound "I am device X" report.
type Announcement struct {
	Name        string
	HardwareID  *string
	Address     *string
	Status      *string
	Description *string
}

type Resolver struct {
	store *db.Store

	// serializes announcements so two concurrent first contacts with the
	// same new hardware id cannot both take the create branch
	mu sync.Mutex
}

func NewResolver(store *db.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve applies the precedence rules in order and returns the canonical
// record, refreshed with the announcement's address and status.
//
//  1. A record already carries the announced hardware id: that record wins;
//     a differing name is a rename, cascaded into play history.
//  2. No record carries the id, but the announced name matches a record
//     without one: the record adopts the id.
//  3. The id is new everywhere: a record is created.
//  4. No id at all (legacy announcement): upsert by name, never touching
//     hardware ids.
func (r *Resolver) Resolve(a Announcement) (*model.Device, error) {
	if a.Name == "" {
		return nil, errors.New("announcement is missing a device name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if a.HardwareID != nil && *a.HardwareID != "" {
		return r.resolveByHardwareID(a)
	}
	return r.resolveByName(a)
}

func (r *Resolver) resolveByHardwareID(a Announcement) (*model.Device, error) {
	hwid := *a.HardwareID

	// rule 1: the identifier is already known
	existing, err := r.store.GetDeviceByHardwareID(hwid)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		if existing.Name != a.Name {
			log.Info().Str("old", existing.Name).Str("new", a.Name).Msg("device renamed")
			if err := r.store.RenameDevice(existing.Name, a.Name); err != nil {
				return nil, fmt.Errorf("rename device %q: %w", existing.Name, err)
			}
		}
		return r.touch(a.Name, a)
	}

	// rule 2: a legacy record with the announced name adopts the identifier
	byName, err := r.store.GetDeviceByName(a.Name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if byName != nil {
		if byName.HardwareID != nil {
			// the announced name belongs to a different physical device
			return nil, fmt.Errorf("device name %q is already bound to another hardware id", a.Name)
		}
		if err := r.store.AdoptHardwareID(a.Name, hwid); err != nil {
			return nil, fmt.Errorf("adopt hardware id for %q: %w", a.Name, err)
		}
		return r.touch(a.Name, a)
	}

	// rule 3: first contact. The unique constraint on hardware_id backstops
	// the serialization above: if a duplicate slips in anyway, re-resolve it
	// as rule 1.
	if _, err := r.store.CreateDevice(a.Name, a.HardwareID, a.Description, a.Address); err != nil {
		if db.IsConflict(err) {
			return r.resolveByHardwareID(a)
		}
		return nil, fmt.Errorf("register device %q: %w", a.Name, err)
	}
	return r.touch(a.Name, a)
}

func (r *Resolver) resolveByName(a Announcement) (*model.Device, error) {
	existing, err := r.store.GetDeviceByName(a.Name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing == nil {
		if _, err := r.store.CreateDevice(a.Name, nil, a.Description, a.Address); err != nil {
			if db.IsConflict(err) {
				return r.touch(a.Name, a)
			}
			return nil, fmt.Errorf("register device %q: %w", a.Name, err)
		}
	}
	return r.touch(a.Name, a)
}

func (r *Resolver) touch(name string, a Announcement) (*model.Device, error) {
	if err := r.store.TouchDevice(name, a.Address, a.Status); err != nil {
		return nil, err
	}
	return r.store.GetDeviceByName(name)
}
