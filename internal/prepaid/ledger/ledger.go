package ledger

import (
	"sort"

	"github.com/smallbiznis/prepaid/internal/prepaid/domain"
)

// Entry is one row of the presented ledger.
type Entry struct {
	Record   domain.PrepaidRecord `json:"record"`
	Category Category             `json:"category"`
	Label    string               `json:"label"`
	// Unspecified is set when the record's tag was absent or unknown and
	// Category holds the fallback.
	Unspecified bool `json:"unspecified"`
}

// Normalize returns the records newest-created first, classified. Records
// with equal CreatedAt keep their input order. The input slice is not modified.
func Normalize(records []domain.PrepaidRecord, labels Labeler) []Entry {
	if labels == nil {
		labels = LabelMap(nil)
	}

	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		category, known := Classify(record.PaymentMethod)
		entries = append(entries, Entry{
			Record:      record,
			Category:    category,
			Label:       labels.Label(category),
			Unspecified: !known,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Record.CreatedAt.After(entries[j].Record.CreatedAt.Time)
	})
	return entries
}

// Summarize totals the records and picks the most recently created one.
func Summarize(records []domain.PrepaidRecord) domain.Summary {
	summary := domain.Summary{RecordCount: len(records)}
	for i := range records {
		summary.TotalAmount += records[i].Amount
		if summary.LastRecord == nil || records[i].CreatedAt.After(summary.LastRecord.CreatedAt.Time) {
			last := records[i]
			summary.LastRecord = &last
		}
	}
	return summary
}

// CountByCategory tallies entries per category.
func CountByCategory(entries []Entry) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, entry := range entries {
		counts[entry.Category]++
	}
	return counts
}
