package differ

import "github.com/mcncl/jsonkit/internal/models"

// Summary provides counts of each record kind in a diff.
type Summary struct {
	Total       int `json:"total"`
	Added       int `json:"added"`
	Removed     int `json:"removed"`
	Changed     int `json:"changed"`
	TypeChanged int `json:"type_changed"`
	Errors      int `json:"errors"`
}

// Identical reports whether the diff found nothing at all.
func (s Summary) Identical() bool {
	return s.Total == 0
}

// Summarize tallies records by kind.
func Summarize(records []models.DiffRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Kind {
		case models.DiffAdded:
			s.Added++
		case models.DiffRemoved:
			s.Removed++
		case models.DiffChanged:
			s.Changed++
		case models.DiffTypeChanged:
			s.TypeChanged++
		case models.DiffError:
			s.Errors++
		}
	}
	return s
}
