package domain

import (
	"context"
	"errors"
)

// RecordFetcher retrieves prepaid history from the remote billing service.
type RecordFetcher interface {
	FetchHistory(ctx context.Context, customerID, contractID string) (HistoryResponse, error)
	FetchByContract(ctx context.Context, contractID string) (HistoryResponse, error)
}

var (
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidContract  = errors.New("invalid_contract")
	ErrTransport        = errors.New("prepaid_transport_failure")
	ErrUnexpectedStatus = errors.New("prepaid_unexpected_status")
	ErrMalformedPayload = errors.New("prepaid_malformed_payload")
)
