package ledger

import (
	"testing"
	"time"

	"github.com/smallbiznis/prepaid/internal/prepaid/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func created(id string, minute int, method string) domain.PrepaidRecord {
	return domain.PrepaidRecord{
		ID:            id,
		Amount:        float64(minute),
		PaymentMethod: method,
		CreatedAt:     domain.NewTimestamp(time.Date(2024, 1, 1, 0, minute, 0, 0, time.UTC)),
	}
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Record.ID)
	}
	return out
}

func TestNormalizeOrdersNewestFirst(t *testing.T) {
	records := []domain.PrepaidRecord{
		created("a", 1, ""),
		created("c", 30, ""),
		created("b", 10, ""),
	}

	entries := Normalize(records, nil)

	assert.Equal(t, []string{"c", "b", "a"}, ids(entries))
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Record.CreatedAt.After(entries[i-1].Record.CreatedAt.Time))
	}
}

func TestNormalizeIsStableForEqualTimestamps(t *testing.T) {
	records := []domain.PrepaidRecord{
		created("first", 5, ""),
		created("newest", 9, ""),
		created("second", 5, ""),
		created("third", 5, ""),
	}

	entries := Normalize(records, nil)

	assert.Equal(t, []string{"newest", "first", "second", "third"}, ids(entries))
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	records := []domain.PrepaidRecord{created("a", 1, ""), created("b", 2, "")}
	original := append([]domain.PrepaidRecord(nil), records...)

	_ = Normalize(records, nil)

	assert.Equal(t, original, records)
}

func TestNormalizeEmpty(t *testing.T) {
	entries := Normalize(nil, nil)
	require.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	records := []domain.PrepaidRecord{created("a", 3, "som_cash"), created("b", 1, "x"), created("c", 3, "")}

	first := Normalize(records, nil)
	ordered := make([]domain.PrepaidRecord, 0, len(first))
	for _, entry := range first {
		ordered = append(ordered, entry.Record)
	}
	second := Normalize(ordered, nil)

	assert.Equal(t, first, second)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		tag      string
		want     Category
		wantKnow bool
	}{
		{"som_cash", CategorySomCash, true},
		{"som_card", CategorySomCard, true},
		{"dollar_cash", CategoryDollarCash, true},
		{"dollar_card", CategoryDollarCard, true},
		{"", CategoryDollarCard, false},
		{"dollar_card_visa", CategoryDollarCard, false},
		{"SOM_CASH", CategoryDollarCard, false},
		{"crypto", CategoryDollarCard, false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, known := Classify(tt.tag)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKnow, known)
		})
	}
}

func TestNormalizeFlagsFallback(t *testing.T) {
	entries := Normalize([]domain.PrepaidRecord{
		created("known", 2, "dollar_cash"),
		created("unknown", 1, "wire"),
	}, nil)

	require.Len(t, entries, 2)
	assert.Equal(t, CategoryDollarCash, entries[0].Category)
	assert.False(t, entries[0].Unspecified)
	assert.Equal(t, "Dollar naqd", entries[0].Label)

	assert.Equal(t, CategoryDollarCard, entries[1].Category)
	assert.True(t, entries[1].Unspecified)
	assert.Equal(t, "Dollar karta", entries[1].Label)

	counts := CountByCategory(entries)
	assert.Equal(t, 1, counts[CategoryDollarCash])
	assert.Equal(t, 1, counts[CategoryDollarCard])
}

func TestLabelMapFallsBackToDefaults(t *testing.T) {
	labels := LabelMap{CategorySomCash: "Naqd", CategorySomCard: "  "}

	assert.Equal(t, "Naqd", labels.Label(CategorySomCash))
	assert.Equal(t, "So'm karta", labels.Label(CategorySomCard))
	assert.Equal(t, "other", labels.Label(Category("other")))
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]domain.PrepaidRecord{created("a", 4, ""), created("b", 7, ""), created("c", 2, "")})

	assert.Equal(t, 3, summary.RecordCount)
	assert.Equal(t, 13.0, summary.TotalAmount)
	require.NotNil(t, summary.LastRecord)
	assert.Equal(t, "b", summary.LastRecord.ID)

	empty := Summarize(nil)
	assert.Zero(t, empty.RecordCount)
	assert.Nil(t, empty.LastRecord)
}
