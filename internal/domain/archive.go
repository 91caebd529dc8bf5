package domain

import "time"

// ArchivedReport is the record kept for every report that was handed to the
// dispatch service.
type ArchivedReport struct {
	RunID        string    `json:"run_id"`
	Location     string    `json:"location"`
	Province     string    `json:"province"`
	GeneratedAt  string    `json:"generated_at"`
	Days         int       `json:"days"`
	Recipients   []string  `json:"recipients"`
	Report       string    `json:"report"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

// NewArchivedReport summarizes a dispatched forecast.
func NewArchivedReport(runID string, f Forecast, recipients []string, report string, dispatchedAt time.Time) ArchivedReport {
	return ArchivedReport{
		RunID:        runID,
		Location:     f.Location,
		Province:     f.Province,
		GeneratedAt:  f.GeneratedAt,
		Days:         len(f.Days),
		Recipients:   recipients,
		Report:       report,
		DispatchedAt: dispatchedAt.UTC(),
	}
}
