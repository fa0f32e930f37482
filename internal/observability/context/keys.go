package context

import "context"

type contextKey string

const (
	requestIDKey  contextKey = "observability_request_id"
	customerIDKey contextKey = "observability_customer_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithCustomerID(ctx context.Context, customerID string) context.Context {
	if ctx == nil || customerID == "" {
		return ctx
	}
	return context.WithValue(ctx, customerIDKey, customerID)
}

func CustomerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(customerIDKey).(string)
	return value
}
