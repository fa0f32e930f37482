package reconcile

import (
	"testing"

	"github.com/smallbiznis/prepaid/internal/prepaid/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func amounts(values ...float64) []domain.PrepaidRecord {
	out := make([]domain.PrepaidRecord, 0, len(values))
	for _, v := range values {
		out = append(out, domain.PrepaidRecord{Amount: v})
	}
	return out
}

func TestReconcileContractsAhead(t *testing.T) {
	contracts := []domain.Contract{
		{ID: "c-1", PrepaidBalance: ptr(50)},
		{ID: "c-2", PrepaidBalance: ptr(0)},
	}

	result := Reconcile(contracts, amounts(30))

	assert.Equal(t, 50.0, result.Balance.TotalFromContracts)
	assert.Equal(t, 30.0, result.Balance.TotalFromRecords)
	assert.Equal(t, 50.0, result.Balance.EffectiveTotal)
	assert.Equal(t, 20.0, result.Balance.Discrepancy)
	require.Len(t, result.ContractsWithPrepaid, 1)
	assert.Equal(t, "c-1", result.ContractsWithPrepaid[0].ID)
}

func TestReconcileRecordsAhead(t *testing.T) {
	result := Reconcile([]domain.Contract{{ID: "c-1", PrepaidBalance: ptr(10)}}, amounts(20, 5))

	assert.Equal(t, 25.0, result.Balance.EffectiveTotal)
	assert.Equal(t, 15.0, result.Balance.Discrepancy)
}

func TestReconcileTreatsAbsentAsZero(t *testing.T) {
	contracts := []domain.Contract{{ID: "c-1"}, {ID: "c-2", PrepaidBalance: ptr(0)}}

	result := Reconcile(contracts, nil)

	assert.Equal(t, 0.0, result.Balance.TotalFromContracts)
	assert.Equal(t, 0.0, result.Balance.TotalFromRecords)
	assert.Empty(t, result.ContractsWithPrepaid)
	assert.NotNil(t, result.ContractsWithPrepaid)
}

func TestReconcileEmpty(t *testing.T) {
	result := Reconcile(nil, nil)

	assert.Zero(t, result.Balance.EffectiveTotal)
	assert.Zero(t, result.Balance.Discrepancy)
	assert.Empty(t, result.ContractsWithPrepaid)
}

func TestReconcileEffectiveIsUpperBound(t *testing.T) {
	cases := []struct {
		contracts []domain.Contract
		records   []domain.PrepaidRecord
	}{
		{[]domain.Contract{{PrepaidBalance: ptr(3)}}, amounts(1, 1)},
		{[]domain.Contract{{PrepaidBalance: ptr(0.1)}, {PrepaidBalance: ptr(0.2)}}, amounts(0.3)},
		{nil, amounts(12.75)},
		{[]domain.Contract{{PrepaidBalance: ptr(99)}}, nil},
	}

	for _, c := range cases {
		b := Reconcile(c.contracts, c.records).Balance
		assert.GreaterOrEqual(t, b.EffectiveTotal, b.TotalFromRecords)
		assert.GreaterOrEqual(t, b.EffectiveTotal, b.TotalFromContracts)
		assert.True(t, b.EffectiveTotal == b.TotalFromRecords || b.EffectiveTotal == b.TotalFromContracts)
		assert.GreaterOrEqual(t, b.EffectiveTotal, 0.0)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	contracts := []domain.Contract{{ID: "c-1", PrepaidBalance: ptr(8)}, {ID: "c-2"}}
	records := amounts(3, 4)

	first := Reconcile(contracts, records)
	second := Reconcile(contracts, records)

	assert.Equal(t, first, second)
}

func TestReconcileMonotonicInRecords(t *testing.T) {
	contracts := []domain.Contract{{PrepaidBalance: ptr(10)}}
	records := amounts(4)

	before := Reconcile(contracts, records).Balance.EffectiveTotal
	after := Reconcile(contracts, append(records, domain.PrepaidRecord{Amount: 9})).Balance.EffectiveTotal

	assert.GreaterOrEqual(t, after, before)
}

type minStrategy struct{}

func (minStrategy) Name() string { return "min" }

func (minStrategy) Effective(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func TestReconcilerUsesBoundStrategy(t *testing.T) {
	contracts := []domain.Contract{{PrepaidBalance: ptr(10)}}

	assert.Equal(t, 10.0, New(nil).Reconcile(contracts, amounts(4)).Balance.EffectiveTotal)
	assert.Equal(t, 4.0, New(minStrategy{}).Reconcile(contracts, amounts(4)).Balance.EffectiveTotal)
	assert.Equal(t, "max", Max{}.Name())
}
