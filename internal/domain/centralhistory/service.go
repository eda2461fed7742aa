package centralhistory

import (
	"context"
	"errors"
	"time"
)

// Validation errors returned to delivering hospitals verbatim.
var (
	ErrMissingFields   = errors.New("Missing required patient fields")
	ErrRecordsRequired = errors.New("Medical record(s) are required")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpsertInput is the payload a hospital delivers for one or more completed
// visits.
type UpsertInput struct {
	FaydaID     string       `json:"faydaID"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	DateOfBirth *time.Time   `json:"dateOfBirth"`
	Gender      string       `json:"gender"`
	BloodGroup  *string      `json:"bloodGroup"`
	Records     []EntryInput `json:"records"`
}

// EntryInput is the wire shape of one delivered visit. It differs from the
// stored RecordEntry in one place: hospitals send `prescriptions`, the
// document keeps the flattened list under `prescription`.
type EntryInput struct {
	HospitalID    string            `json:"hospitalID"`
	DoctorNotes   DoctorNotes       `json:"doctorNotes"`
	Prescriptions []MedicationEntry `json:"prescriptions"`
	LabResults    []LabResult       `json:"labResults"`
	RecordedAt    time.Time         `json:"recordedAt"`
}

// Upsert merges visit entries into the central history, creating the patient
// on first contact. The created flag distinguishes 201 from 200 responses.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*PatientHistory, bool, error) {
	if in.FaydaID == "" || in.FirstName == "" || in.LastName == "" ||
		in.DateOfBirth == nil || in.Gender == "" {
		return nil, false, ErrMissingFields
	}
	if len(in.Records) == 0 {
		return nil, false, ErrRecordsRequired
	}

	now := time.Now().UTC()
	entries := make([]RecordEntry, len(in.Records))
	for i, e := range in.Records {
		entry := RecordEntry{
			HospitalID:   e.HospitalID,
			DoctorNotes:  e.DoctorNotes,
			Prescription: e.Prescriptions,
			LabResults:   e.LabResults,
			RecordedAt:   e.RecordedAt,
		}
		if entry.RecordedAt.IsZero() {
			entry.RecordedAt = now
		}
		entries[i] = entry
	}

	h := &PatientHistory{
		FaydaID:     in.FaydaID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		Gender:      in.Gender,
		BloodGroup:  in.BloodGroup,
	}

	err := s.repo.AppendRecords(ctx, h, entries)
	if err == nil {
		return h, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	h.Records = entries
	if err := s.repo.Create(ctx, h); err != nil {
		// Another hospital created the row between the append and the
		// insert. Retry the append once.
		if errors.Is(err, ErrDuplicate) {
			h.Records = nil
			if err := s.repo.AppendRecords(ctx, h, entries); err != nil {
				return nil, false, err
			}
			return h, false, nil
		}
		return nil, false, err
	}
	return h, true, nil
}

// HistoryView is the read shape: newest visit first, with derived fields the
// consuming hospitals expect.
type HistoryView struct {
	FaydaID      string        `json:"faydaID"`
	FullName     string        `json:"fullName"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	DateOfBirth  *time.Time    `json:"dateOfBirth,omitempty"`
	Gender       string        `json:"gender,omitempty"`
	BloodGroup   *string       `json:"bloodGroup,omitempty"`
	TotalRecords int           `json:"totalRecords"`
	Records      []RecordEntry `json:"records"`
}

func (s *Service) GetHistory(ctx context.Context, faydaID string) (*HistoryView, error) {
	h, err := s.repo.GetByFaydaID(ctx, faydaID)
	if err != nil {
		return nil, err
	}

	// Entries are stored oldest first; readers want the most recent visit
	// on top.
	reversed := make([]RecordEntry, len(h.Records))
	for i, e := range h.Records {
		reversed[len(h.Records)-1-i] = e
	}

	return &HistoryView{
		FaydaID:      h.FaydaID,
		FullName:     h.FirstName + " " + h.LastName,
		FirstName:    h.FirstName,
		LastName:     h.LastName,
		DateOfBirth:  h.DateOfBirth,
		Gender:       h.Gender,
		BloodGroup:   h.BloodGroup,
		TotalRecords: len(reversed),
		Records:      reversed,
	}, nil
}

// PatientSummary omits the record payloads when listing.
type PatientSummary struct {
	FaydaID      string     `json:"faydaID"`
	FullName     string     `json:"fullName"`
	Gender       string     `json:"gender,omitempty"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	TotalRecords int        `json:"totalRecords"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (s *Service) ListPatients(ctx context.Context, faydaID, firstName string, limit, offset int) ([]*PatientSummary, int, error) {
	histories, total, err := s.repo.List(ctx, faydaID, firstName, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*PatientSummary, len(histories))
	for i, h := range histories {
		out[i] = &PatientSummary{
			FaydaID:      h.FaydaID,
			FullName:     h.FirstName + " " + h.LastName,
			Gender:       h.Gender,
			DateOfBirth:  h.DateOfBirth,
			TotalRecords: len(h.Records),
			UpdatedAt:    h.UpdatedAt,
		}
	}
	return out, total, nil
}
