package sync

import (
	"time"

	"github.com/mediconnet/api/internal/domain/centralhistory"
	"github.com/mediconnet/api/internal/domain/record"
)

// BuildEntry flattens a completed visit into the wire shape the central
// history accepts. Every medicine line of every prescription becomes one
// medication entry; every lab request becomes one name/result pair, with the
// result blank when the lab never finished.
func BuildEntry(rec *record.MedicalRecord, prescriptions []*record.Prescription, labs []*record.LabRequest) centralhistory.EntryInput {
	entry := centralhistory.EntryInput{
		HospitalID: rec.HospitalID.String(),
	}
	if rec.Notes != nil {
		entry.DoctorNotes = centralhistory.DoctorNotes{
			Diagnosis:     rec.Notes.Diagnosis,
			TreatmentPlan: rec.Notes.TreatmentPlan,
		}
	}
	if rec.CompletedAt != nil {
		entry.RecordedAt = *rec.CompletedAt
	}

	for _, p := range prescriptions {
		for _, m := range p.MedicineList {
			entry.Prescriptions = append(entry.Prescriptions, centralhistory.MedicationEntry{
				MedicationName: m.MedicationName,
				Dosage:         m.Dosage,
				Frequency:      m.Frequency,
				Duration:       m.Duration,
			})
		}
	}

	for _, l := range labs {
		entry.LabResults = append(entry.LabResults, flattenLab(l))
	}
	return entry
}

func flattenLab(l *record.LabRequest) centralhistory.LabResult {
	result := centralhistory.LabResult{TestName: l.TestType}
	if l.Results != nil {
		result.Result = l.Results.TestValue
		if l.Results.CompletedDate != nil {
			result.Date = *l.Results.CompletedDate
			return result
		}
	}
	if l.CompletionDate != nil {
		result.Date = *l.CompletionDate
		return result
	}
	result.Date = time.Now().UTC()
	return result
}
