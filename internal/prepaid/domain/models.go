package domain

// Contract is a read-only snapshot of a customer agreement owned by billing.
type Contract struct {
	ID             string   `json:"_id"`
	CustomID       string   `json:"customId,omitempty"`
	ProductName    string   `json:"productName"`
	TotalPrice     float64  `json:"totalPrice"`
	MonthlyPayment float64  `json:"monthlyPayment"`
	Period         int      `json:"period"`
	PrepaidBalance *float64 `json:"prepaidBalance,omitempty"`
}

// Prepaid returns the cached prepaid balance, treating an absent value as zero.
func (c Contract) Prepaid() float64 {
	if c.PrepaidBalance == nil {
		return 0
	}
	return *c.PrepaidBalance
}

// HasPrepaid reports whether the contract currently carries unspent credit.
func (c Contract) HasPrepaid() bool {
	return c.PrepaidBalance != nil && *c.PrepaidBalance > 0
}

// PrepaidRecord is one overpayment event persisted by the billing service.
type PrepaidRecord struct {
	ID               string    `json:"_id"`
	Amount           float64   `json:"amount"`
	Date             Timestamp `json:"date"`
	PaymentMethod    string    `json:"paymentMethod,omitempty"`
	CreatedBy        string    `json:"createdBy,omitempty"`
	Customer         string    `json:"customer"`
	Contract         string    `json:"contract"`
	ContractCustomID string    `json:"contractId,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	RelatedPaymentID string    `json:"relatedPaymentId,omitempty"`
	CreatedAt        Timestamp `json:"createdAt"`
	UpdatedAt        Timestamp `json:"updatedAt"`
}

// HistoryResponse is the envelope returned by the prepaid history endpoints.
type HistoryResponse struct {
	Success bool            `json:"success"`
	Data    []PrepaidRecord `json:"data"`
	Count   int             `json:"count"`
}

// Summary aggregates a record collection.
type Summary struct {
	TotalAmount float64        `json:"total_amount"`
	RecordCount int            `json:"record_count"`
	LastRecord  *PrepaidRecord `json:"last_record,omitempty"`
}

// ReconciledBalance is derived on every input change and never persisted.
type ReconciledBalance struct {
	TotalFromRecords   float64 `json:"total_from_records"`
	TotalFromContracts float64 `json:"total_from_contracts"`
	EffectiveTotal     float64 `json:"effective_total"`
	// Discrepancy is |TotalFromRecords - TotalFromContracts|, for diagnostics only.
	Discrepancy float64 `json:"discrepancy"`
}

// HistoryQuery scopes a history fetch.
type HistoryQuery struct {
	CustomerID string
	ContractID string
}
