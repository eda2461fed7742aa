package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediconnet/api/internal/domain/centralhistory"
	"github.com/mediconnet/api/internal/domain/patient"
	"github.com/mediconnet/api/internal/domain/record"
)

// Engine delivers one completed record to the central history. This
// deployment hosts the central registry in-process, so delivery is a service
// call rather than an HTTP hop; the outbox still buffers it so a failed
// delivery never blocks the doctor's workflow.
type Engine struct {
	records  record.Repository
	rx       record.PrescriptionRepository
	labs     record.LabRequestRepository
	patients patient.Repository
	central  *centralhistory.Service
	log      zerolog.Logger
}

func NewEngine(records record.Repository, rx record.PrescriptionRepository, labs record.LabRequestRepository, patients patient.Repository, central *centralhistory.Service, log zerolog.Logger) *Engine {
	return &Engine{records: records, rx: rx, labs: labs, patients: patients, central: central, log: log}
}

// SyncRecord loads the visit, flattens it and merges it into the central
// history. Safe to call more than once: an already-synced record is skipped.
func (e *Engine) SyncRecord(ctx context.Context, recordID uuid.UUID) error {
	rec, err := e.records.GetAnyByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}
	if rec.Synced {
		e.log.Debug().Str("record_id", recordID.String()).Msg("record already synced, skipping")
		return nil
	}
	if rec.Status != record.StatusCompleted {
		return fmt.Errorf("record %s is %s, only completed records sync", recordID, rec.Status)
	}

	p, err := e.patients.GetByID(ctx, rec.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}

	prescriptions, err := e.rx.ListByRecord(ctx, recordID)
	if err != nil {
		return fmt.Errorf("load prescriptions: %w", err)
	}
	labs, err := e.labs.ListByRecord(ctx, recordID)
	if err != nil {
		return fmt.Errorf("load lab requests: %w", err)
	}

	entry := BuildEntry(rec, prescriptions, labs)

	_, _, err = e.central.Upsert(ctx, centralhistory.UpsertInput{
		FaydaID:     p.FaydaID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
		BloodGroup:  p.BloodGroup,
		Records:     []centralhistory.EntryInput{entry},
	})
	if err != nil {
		return fmt.Errorf("deliver to central history: %w", err)
	}

	if err := e.records.MarkSynced(ctx, recordID); err != nil {
		// Delivery succeeded but the flag didn't stick. The outbox row is
		// unique per record, so the retry will hit the synced check next
		// time the flag does persist; worst case the central registry
		// receives the visit twice from this path and tolerates it.
		return fmt.Errorf("mark synced: %w", err)
	}

	e.log.Info().
		Str("record_id", recordID.String()).
		Str("fayda_id", p.FaydaID).
		Msg("record synced to central history")
	return nil
}
