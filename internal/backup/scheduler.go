// Package backup produces transactionally consistent snapshots of the live
// store on a daily schedule and enforces a retention window.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
)

const (
	artifactPrefix = "backup-"
	artifactSuffix = ".db"
	artifactDate   = "2006-01-02"
)

// SnapshotInfo describes one artifact on disk.
type SnapshotInfo struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// Scheduler waits until the configured hour each day and snapshots the
// store. A policy change cancels the current wait and recomputes it from
// scratch against the new hour; an in-flight snapshot is left to finish.
type Scheduler struct {
	store      *db.Store
	dir        string
	policyPath string

	mu     sync.Mutex
	policy Policy

	now      func() time.Time // injectable for tests
	rearm    chan struct{}
	stopOnce sync.Once
	stop     chan struct{}
}

func NewScheduler(store *db.Store, dir, policyPath string, policy Policy) *Scheduler {
	return &Scheduler{
		store:      store,
		dir:        dir,
		policyPath: policyPath,
		policy:     policy,
		now:        time.Now,
		rearm:      make(chan struct{}, 1),
		stop:       make(chan struct{}),
	}
}

func (s *Scheduler) Policy() Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// SetPolicy persists the new policy and restarts the wait.
func (s *Scheduler) SetPolicy(p Policy) error {
	if err := SavePolicy(s.policyPath, p); err != nil {
		return err
	}
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()

	select {
	case s.rearm <- struct{}{}:
	default:
	}
	return nil
}

// NextRun computes the next firing instant for hour-of-day h: today at h:00
// if still ahead, otherwise tomorrow at h:00. Recomputing against the wall
// clock every cycle avoids drift and self-corrects after restarts.
func NextRun(now time.Time, h int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start runs the timer loop until Stop is called.
func (s *Scheduler) Start() {
	go s.loop()
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Scheduler) loop() {
	for {
		p := s.Policy()
		if !p.Enabled {
			// DISABLED: nothing to arm, wait for a policy change
			select {
			case <-s.rearm:
				continue
			case <-s.stop:
				return
			}
		}

		next := NextRun(s.now(), p.Hour)
		timer := time.NewTimer(next.Sub(s.now()))
		log.Info().Time("next_run", next).Msg("backup scheduler armed")

		select {
		case <-timer.C:
			// timer-driven failures are logged and swallowed; a missed
			// day must not stop future backups
			if _, err := s.RunOnce(); err != nil {
				log.Error().Err(err).Msg("scheduled backup failed")
			}
		case <-s.rearm:
			timer.Stop()
		case <-s.stop:
			timer.Stop()
			return
		}
	}
}

// RunOnce takes today's snapshot and prunes expired artifacts. It is the
// same operation for timer and on-demand triggers, and a no-op when today's
// artifact already exists.
func (s *Scheduler) RunOnce() (string, error) {
	name, err := s.snapshot()
	if err != nil {
		return "", err
	}
	s.prune()
	return name, nil
}

func (s *Scheduler) snapshot() (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	name := artifactPrefix + s.now().Format(artifactDate) + artifactSuffix
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		log.Info().Str("name", name).Msg("backup for today already exists, skipping")
		return name, nil
	}

	if err := s.store.SnapshotTo(path); err != nil {
		return "", err
	}
	log.Info().Str("name", name).Msg("backup snapshot written")
	return name, nil
}

// prune deletes artifacts whose modification time has fallen outside the
// retention window. Per-file failures are logged, never fatal.
func (s *Scheduler) prune() {
	p := s.Policy()
	cutoff := s.now().AddDate(0, 0, -p.RetentionDays)

	snaps, err := s.List()
	if err != nil {
		log.Error().Err(err).Msg("backup prune: listing failed")
		return
	}
	for _, snap := range snaps {
		if !snap.ModTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, snap.Name)); err != nil {
			log.Error().Err(err).Str("name", snap.Name).Msg("backup prune: removal failed")
			continue
		}
		log.Info().Str("name", snap.Name).Msg("expired backup removed")
	}
}

// List returns existing artifacts, newest name first.
func (s *Scheduler) List() ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []SnapshotInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), artifactPrefix) || !strings.HasSuffix(e.Name(), artifactSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, SnapshotInfo{Name: e.Name(), SizeBytes: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}
