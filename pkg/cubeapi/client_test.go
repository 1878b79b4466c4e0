package cubeapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lkml2cube/internal/testutil"
)

const metaURL = "http://cube.test/cubejs-api/v1/meta"

const metaBody = `{"cubes":[
  {"name":"orders","title":"Orders Table","sql_table":"public.orders",
   "dimensions":[{"name":"orders.id","type":"number","sql":"{CUBE}.id","public":true}],
   "measures":[{"name":"orders.count","type":"number","aggType":"count","public":true}]},
  {"name":"order_summary",
   "dimensions":[{"name":"order_summary.order_id","aliasMember":"orders.id","type":"number","public":true}]}
]}`

func newTestClient(t *testing.T, retries int) *Client {
	t.Helper()
	c, err := NewClient(Config{
		URL:       metaURL,
		Token:     "test-token",
		Retries:   retries,
		RetryWait: time.Millisecond,
		Logger:    testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	httpmock.ActivateNonDefault(c.http.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestClient_Meta(t *testing.T) {
	c := newTestClient(t, 0)

	var gotQuery, gotAuth string
	httpmock.RegisterResponder(http.MethodGet, metaURL, func(req *http.Request) (*http.Response, error) {
		gotQuery = req.URL.RawQuery
		gotAuth = req.Header.Get("Authorization")
		return httpmock.NewStringResponse(http.StatusOK, metaBody), nil
	})

	meta, err := c.Meta(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "extended", gotQuery)
	assert.Equal(t, "Bearer test-token", gotAuth)
	require.Len(t, meta.Cubes, 2)
	assert.Equal(t, "public.orders", meta.Cubes[0].SQLTable)
	assert.Equal(t, "orders.id", meta.Cubes[1].Dimensions[0].AliasMember)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestClient_RequestError(t *testing.T) {
	c := newTestClient(t, 0)
	httpmock.RegisterResponder(http.MethodGet, metaURL, httpmock.NewStringResponder(http.StatusUnauthorized, "Unauthorized"))

	_, err := c.Meta(context.Background())

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Contains(t, err.Error(), "failed to fetch meta data")
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestClient_RetriesUnavailableAndContinueWait(t *testing.T) {
	c := newTestClient(t, 3)

	calls := 0
	httpmock.RegisterResponder(http.MethodGet, metaURL, func(*http.Request) (*http.Response, error) {
		calls++
		switch calls {
		case 1:
			return httpmock.NewStringResponse(http.StatusServiceUnavailable, "down"), nil
		case 2:
			return httpmock.NewStringResponse(http.StatusOK, `{"error":"Continue wait"}`), nil
		default:
			return httpmock.NewStringResponse(http.StatusOK, metaBody), nil
		}
	})

	meta, err := c.Meta(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, meta.Cubes, 2)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{URL: metaURL})
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = NewClient(Config{URL: "not a url", Token: "t"})
	assert.Error(t, err)
}

func TestExtendedURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{metaURL, metaURL + "?extended"},
		{metaURL + "?extended", metaURL + "?extended"},
		{metaURL + "?extended=true", metaURL + "?extended=true"},
		{metaURL + "?foo=bar", metaURL + "?foo=bar&extended"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExtendedURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
