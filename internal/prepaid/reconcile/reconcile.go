// Package reconcile combines the cached contract balances and the record
// history into a single prepaid total.
package reconcile

import (
	"math"

	"github.com/smallbiznis/prepaid/internal/prepaid/domain"
)

// Strategy picks the effective total from the two candidate sums.
type Strategy interface {
	Name() string
	Effective(fromRecords, fromContracts float64) float64
}

// Max reports the larger of the two sums so a lagging source never
// under-reports credit.
type Max struct{}

func (Max) Name() string { return "max" }

func (Max) Effective(fromRecords, fromContracts float64) float64 {
	return math.Max(fromRecords, fromContracts)
}

// Result is the reconciled balance plus the contracts holding credit.
type Result struct {
	Balance              domain.ReconciledBalance `json:"balance"`
	ContractsWithPrepaid []domain.Contract        `json:"contracts_with_prepaid"`
}

// Reconciler binds a Strategy. The zero value uses Max.
type Reconciler struct {
	Strategy Strategy
}

// New returns a Reconciler using s, or Max when s is nil.
func New(s Strategy) Reconciler {
	return Reconciler{Strategy: s}
}

// Reconcile is a pure function of its inputs.
func (r Reconciler) Reconcile(contracts []domain.Contract, records []domain.PrepaidRecord) Result {
	strategy := r.Strategy
	if strategy == nil {
		strategy = Max{}
	}

	fromRecords := SumRecords(records)
	fromContracts := SumContracts(contracts)

	return Result{
		Balance: domain.ReconciledBalance{
			TotalFromRecords:   fromRecords,
			TotalFromContracts: fromContracts,
			EffectiveTotal:     strategy.Effective(fromRecords, fromContracts),
			Discrepancy:        math.Abs(fromRecords - fromContracts),
		},
		ContractsWithPrepaid: ContractsWithPrepaid(contracts),
	}
}

// Reconcile runs the default Max strategy.
func Reconcile(contracts []domain.Contract, records []domain.PrepaidRecord) Result {
	return Reconciler{}.Reconcile(contracts, records)
}

// SumRecords totals record amounts.
func SumRecords(records []domain.PrepaidRecord) float64 {
	var total float64
	for i := range records {
		total += records[i].Amount
	}
	return total
}

// SumContracts totals cached prepaid balances; absent balances count as zero.
func SumContracts(contracts []domain.Contract) float64 {
	var total float64
	for i := range contracts {
		total += contracts[i].Prepaid()
	}
	return total
}

// ContractsWithPrepaid keeps contracts whose cached balance is present and positive.
func ContractsWithPrepaid(contracts []domain.Contract) []domain.Contract {
	out := make([]domain.Contract, 0, len(contracts))
	for _, contract := range contracts {
		if contract.HasPrepaid() {
			out = append(out, contract)
		}
	}
	return out
}
