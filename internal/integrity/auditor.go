// Package integrity compares the video catalog against the files actually on
// disk and reports or repairs divergence in either direction.
package integrity

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/storage"
)

// Report is the outcome of one audit pass. Missing and Orphaned are always
// populated; the Removed lists only in repair mode. Repair is best-effort
// per file: failures land in Errors instead of aborting the pass.
type Report struct {
	Missing            []string `json:"missing_files"`
	Orphaned           []string `json:"orphaned_files"`
	RemovedFromCatalog []string `json:"removed_from_catalog,omitempty"`
	RemovedFromDisk    []string `json:"removed_from_disk,omitempty"`
	Errors             []string `json:"errors,omitempty"`
}

type Auditor struct {
	store  *db.Store
	videos *storage.VideoStore
}

func NewAuditor(store *db.Store, videos *storage.VideoStore) *Auditor {
	return &Auditor{store: store, videos: videos}
}

// Audit computes both divergence sets. With repair set, missing catalog
// entries are removed (membership rows first, then the row) and orphaned
// files are deleted from disk. Running a repair pass twice yields an empty
// report the second time.
func (a *Auditor) Audit(repair bool) (*Report, error) {
	catalog, err := a.store.ListVideoFilenames()
	if err != nil {
		return nil, fmt.Errorf("list catalog filenames: %w", err)
	}
	onDisk, err := a.videos.List()
	if err != nil {
		return nil, fmt.Errorf("list video directory: %w", err)
	}

	inCatalog := make(map[string]bool, len(catalog))
	for _, name := range catalog {
		inCatalog[name] = true
	}
	present := make(map[string]bool, len(onDisk))
	for _, name := range onDisk {
		present[name] = true
	}

	report := &Report{Missing: []string{}, Orphaned: []string{}}
	for _, name := range catalog {
		if !present[name] {
			report.Missing = append(report.Missing, name)
		}
	}
	for _, name := range onDisk {
		if !inCatalog[name] {
			report.Orphaned = append(report.Orphaned, name)
		}
	}
	sort.Strings(report.Missing)
	sort.Strings(report.Orphaned)

	if !repair {
		return report, nil
	}

	for _, name := range report.Missing {
		if err := a.store.DeleteVideoByFilename(name); err != nil {
			log.Error().Err(err).Str("filename", name).Msg("integrity repair: catalog removal failed")
			report.Errors = append(report.Errors, fmt.Sprintf("remove %s from catalog: %v", name, err))
			continue
		}
		report.RemovedFromCatalog = append(report.RemovedFromCatalog, name)
	}
	for _, name := range report.Orphaned {
		if err := a.videos.Delete(name); err != nil {
			log.Error().Err(err).Str("filename", name).Msg("integrity repair: file removal failed")
			report.Errors = append(report.Errors, fmt.Sprintf("delete %s from disk: %v", name, err))
			continue
		}
		report.RemovedFromDisk = append(report.RemovedFromDisk, name)
	}

	log.Info().
		Int("removed_from_catalog", len(report.RemovedFromCatalog)).
		Int("removed_from_disk", len(report.RemovedFromDisk)).
		Int("errors", len(report.Errors)).
		Msg("integrity repair completed")
	return report, nil
}
