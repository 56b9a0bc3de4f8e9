// Package repository persists canonical entity snapshots. Each save replaces the
// previous entity set; the snapshots table keeps one row per run.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// Snapshot is one run's canonical set.
type Snapshot struct {
	RunID    uuid.UUID
	TakenAt  time.Time
	Entities []entity.CanonicalEntity
}

// SnapshotStore is the behavior the pipeline depends on.
type SnapshotStore interface {
	// Save replaces the stored entity set with s in one transaction.
	Save(ctx context.Context, s Snapshot) error
	// Latest returns the most recently saved snapshot, or ErrNotFound.
	Latest(ctx context.Context) (Snapshot, error)
	Close() error
}

// entityRow is the flat column set shared by both stores.
type entityRow struct {
	position     int
	name         string
	category     string
	department   string
	email        string
	phone        string
	researcherID string
	sources      string
	contributing []byte
}

func toRows(entities []entity.CanonicalEntity) ([]entityRow, error) {
	out := make([]entityRow, 0, len(entities))
	for i, e := range entities {
		contrib, err := json.Marshal(e.ContributingRecords)
		if err != nil {
			return nil, fmt.Errorf("marshal contributing records of %q: %w", e.Name, err)
		}
		r := e.Row(true)
		out = append(out, entityRow{
			position:     i,
			name:         e.Name,
			category:     e.Category,
			department:   e.Department,
			email:        e.Email,
			phone:        e.Phone,
			researcherID: e.ResearcherID,
			sources:      r.Sources,
			contributing: contrib,
		})
	}
	return out, nil
}

func (r entityRow) entity() (entity.CanonicalEntity, error) {
	e := entity.CanonicalEntity{
		Name:         r.name,
		Category:     r.category,
		Department:   r.department,
		Email:        r.email,
		Phone:        r.phone,
		ResearcherID: r.researcherID,
	}
	if len(r.contributing) > 0 {
		if err := json.Unmarshal(r.contributing, &e.ContributingRecords); err != nil {
			return e, fmt.Errorf("unmarshal contributing records of %q: %w", r.name, err)
		}
	}
	return e, nil
}
