package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/serrors"
)

func newTestClient() *Client {
	return New(zap.NewNop(), Options{Timeout: 5 * time.Second, UserAgent: "test-agent"})
}

func TestFetchListingsRetriesOnceOnServerError(t *testing.T) {
	var (
		calls atomic.Int32
		agent atomic.Value
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		agent.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"id":"a1","text":"ML Intern","hostedUrl":"https://jobs.lever.co/acme/a1"}]`))
	}))
	defer srv.Close()

	listings, err := newTestClient().FetchListings(context.Background(), &Lever{BaseURL: srv.URL}, Source{Kind: KindLever, Slug: "acme"})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, "test-agent", agent.Load())
}

func TestFetchListingsGivesUpAfterOneRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient().FetchListings(context.Background(), &Lever{BaseURL: srv.URL}, Source{Kind: KindLever, Slug: "acme"})
	require.Error(t, err)
	require.True(t, errors.Is(err, serrors.ErrTransport))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	require.Equal(t, int32(2), calls.Load())
}

func TestFetchListingsDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient().FetchListings(context.Background(), &Lever{BaseURL: srv.URL}, Source{Kind: KindLever, Slug: "missing"})
	require.ErrorIs(t, err, serrors.ErrTransport)
	require.Equal(t, int32(1), calls.Load())
}

func TestFetchListingsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient().FetchListings(context.Background(), &Greenhouse{BaseURL: srv.URL}, Source{Kind: KindGreenhouse, Slug: "acme"})
	require.ErrorIs(t, err, serrors.ErrTransport)
}

func TestEndpoints(t *testing.T) {
	src := Source{Slug: "acme"}
	require.Equal(t, "https://boards-api.greenhouse.io/v1/boards/acme/jobs?content=true", (&Greenhouse{BaseURL: GreenhouseBaseURL}).Endpoint(src))
	require.Equal(t, "https://api.lever.co/v0/postings/acme?mode=json", (&Lever{BaseURL: LeverBaseURL}).Endpoint(src))
	require.Equal(t, "https://api.smartrecruiters.com/v1/companies/acme/postings", (&SmartRecruiters{BaseURL: SmartRecruitersBaseURL}).Endpoint(src))
}
