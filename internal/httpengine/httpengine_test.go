package httpengine_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goware/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/httpengine"
)

func newTestClient(maxRetries int) *httpengine.Client {
	return httpengine.New(logger.NewLogger(logger.LogLevel_INFO), 2*time.Second, maxRetries, 0)
}

func TestGetSucceedsOnFirstAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","message":"OK","result":[1,2,3]}`))
	}))
	defer srv.Close()

	c := newTestClient(3)
	payload, err := c.Get(context.Background(), srv.URL, url.Values{})
	require.NoError(t, err)

	result, err := httpengine.ExtractEtherscanList(payload)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, result)
}

func TestGetRetriesOn5xxThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(3)
	_, err := c.Get(context.Background(), srv.URL, url.Values{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGetDoesNotRetryOn4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	c := newTestClient(3)
	_, err := c.Get(context.Background(), srv.URL, url.Values{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGetRetriesOnBodyLevelRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Write([]byte(`{"status":"0","message":"Max calls per sec rate limit reached","result":null}`))
			return
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(3)
	_, err := c.Get(context.Background(), srv.URL, url.Values{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestExtractEtherscanListEmptyOnNoMessage(t *testing.T) {
	result, err := httpengine.ExtractEtherscanList(map[string]any{
		"status":  "0",
		"message": "No transactions found",
		"result":  "",
	})
	require.NoError(t, err)
	assert.Equal(t, []any{}, result)
}

func TestExtractEtherscanListErrorsOnOtherStatusZero(t *testing.T) {
	_, err := httpengine.ExtractEtherscanList(map[string]any{
		"status":  "0",
		"message": "Invalid API key",
		"result":  "",
	})
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestExtractProxyResultRejectsErrorCode(t *testing.T) {
	_, err := httpengine.ExtractProxyResult(map[string]any{
		"error": map[string]any{"code": float64(-32000), "message": "execution reverted"},
	}, false)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestExtractProxyResultAllowNone(t *testing.T) {
	result, err := httpengine.ExtractProxyResult(map[string]any{"result": nil}, true)
	require.NoError(t, err)
	assert.Nil(t, result)

	_, err = httpengine.ExtractProxyResult(map[string]any{"result": nil}, false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestExtractChainlistRequiresListResult(t *testing.T) {
	_, err := httpengine.ExtractChainlist(map[string]any{"result": "not-a-list"})
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	result, err := httpengine.ExtractChainlist(map[string]any{"result": []any{"a", "b"}})
	require.NoError(t, err)
	assert.Len(t, result, 2)
}
