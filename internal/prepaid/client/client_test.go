package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	obscontext "github.com/smallbiznis/prepaid/internal/observability/context"
	"github.com/smallbiznis/prepaid/internal/prepaid/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver string

func (r staticResolver) Resolve(context.Context) (string, bool) {
	return string(r), r != ""
}

func newTestClient(t *testing.T, baseURL string, creds staticResolver, retries int) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:        baseURL + "/api/bot/",
		Timeout:        2 * time.Second,
		MaxRetries:     retries,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  2 * time.Millisecond,
	}, nil, creds, nil)
	require.NoError(t, err)
	return c
}

func TestFetchHistoryBuildsRequest(t *testing.T) {
	var captured *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"count":2,"data":[
			{"_id":"r1","amount":30,"paymentMethod":"som_cash","customer":"cust-1","contract":"c-1",
			 "date":"2024-03-01T00:00:00.000Z","createdAt":"2024-03-01T10:00:00.000Z","updatedAt":"2024-03-01T10:00:00.000Z"},
			{"_id":"r2","amount":5,"customer":"cust-1","contract":"c-1",
			 "date":1709294400000,"createdAt":1709294400000,"updatedAt":null}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "secret-token", 0)
	ctx := obscontext.WithRequestID(context.Background(), "req-123")

	resp, err := c.FetchHistory(ctx, "cust-1", "c-1")
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "/api/bot/prepaid/history/cust-1", captured.URL.Path)
	assert.Equal(t, "c-1", captured.URL.Query().Get("contractId"))
	assert.Equal(t, "Bearer secret-token", captured.Header.Get("Authorization"))
	assert.Equal(t, "req-123", captured.Header.Get("X-Request-Id"))

	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "som_cash", resp.Data[0].PaymentMethod)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), resp.Data[0].CreatedAt.Time)
	assert.Equal(t, time.UnixMilli(1709294400000).UTC(), resp.Data[1].CreatedAt.Time)
	assert.True(t, resp.Data[1].UpdatedAt.IsZero())
}

func TestFetchHistoryAcceptsFloatMillis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"count":2,"data":[
			{"_id":"r1","amount":1,"createdAt":1.7092890e12},
			{"_id":"r2","amount":2,"createdAt":"2024-03-01T10:30:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "", 0)
	resp, err := c.FetchHistory(context.Background(), "cust-1", "")
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, time.UnixMilli(1709289000000).UTC(), resp.Data[0].CreatedAt.Time)
}

func TestFetchHistoryWithoutTokenOrContract(t *testing.T) {
	var captured *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "", 0)
	resp, err := c.FetchHistory(context.Background(), "cust-1", "")
	require.NoError(t, err)

	assert.Empty(t, captured.Header.Get("Authorization"))
	assert.Empty(t, captured.URL.RawQuery)
	assert.NotEmpty(t, captured.Header.Get("X-Request-Id"))
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Data)
}

func TestFetchByContract(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true,"count":1,"data":[{"_id":"r1","amount":12.5}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "", 0)
	resp, err := c.FetchByContract(context.Background(), "c-42")
	require.NoError(t, err)
	assert.Equal(t, "/api/bot/prepaid/contract/c-42", path)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 12.5, resp.Data[0].Amount)
}

func TestFetchRejectsBlankIdentifiers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "", 0)

	_, err := c.FetchHistory(context.Background(), "  ", "c-1")
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = c.FetchByContract(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidContract)

	assert.Equal(t, int32(0), calls.Load())
}

func TestFetchHistoryErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, wantErr: domain.ErrUnexpectedStatus},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"success":false}`, wantErr: domain.ErrUnexpectedStatus},
		{name: "missing data", status: http.StatusOK, body: `{"success":true,"count":0}`, wantErr: domain.ErrMalformedPayload},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantErr: domain.ErrMalformedPayload},
		{name: "bad timestamp", status: http.StatusOK, body: `{"data":[{"_id":"r1","createdAt":"yesterday"}]}`, wantErr: domain.ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, "", 0)
			_, err := c.FetchHistory(context.Background(), "cust-1", "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchHistoryTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, "", 0)
	_, err := c.FetchHistory(context.Background(), "cust-1", "")
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestFetchHistoryRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"count":0,"data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "", 2)
	_, err := c.FetchHistory(context.Background(), "cust-1", "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchHistoryDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "", 3)
	_, err := c.FetchHistory(context.Background(), "cust-1", "")
	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"}, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(Config{BaseURL: ""}, nil, nil, nil)
	assert.Error(t, err)
}
