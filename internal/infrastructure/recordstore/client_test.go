package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pulse-platform/production-service/pkg/errors"
	"github.com/pulse-platform/production-service/pkg/logging"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.DocID = "prod-doc"
	config.APIKey = "test-key"

	logConfig := logging.DefaultConfig("recordstore-test")
	logConfig.Level = logging.LevelError
	client := NewClient(config, nil, logging.New(logConfig))
	// Tight retry delays so failure tests stay fast.
	client.retry.InitialDelay = 1 * time.Millisecond
	client.retry.MaxDelay = 5 * time.Millisecond
	return client, server
}

func TestClientGetRecords(t *testing.T) {
	var gotPath, gotAuth, gotFilter string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotFilter = r.URL.Query().Get("filter")
		fmt.Fprint(w, `{"records":[{"id":7,"fields":{"batch_number":"AUG25-MX100-M-001","quantity":10}}]}`)
	}))

	records, err := client.GetRecords(context.Background(), TableBatchMaster, map[string]any{"batch_number": "AUG25-MX100-M-001"})
	require.NoError(t, err)

	assert.Equal(t, "/api/docs/prod-doc/tables/ProductBatchMaster/records", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)

	var filter map[string][]any
	require.NoError(t, json.Unmarshal([]byte(gotFilter), &filter))
	assert.Equal(t, []any{"AUG25-MX100-M-001"}, filter["batch_number"])

	require.Len(t, records, 1)
	assert.Equal(t, 7, records[0].ID)
	assert.Equal(t, "AUG25-MX100-M-001", fieldString(records[0].Fields, "batch_number"))
	assert.Equal(t, 10, fieldInt(records[0].Fields, "quantity"))
}

func TestClientAddRecords(t *testing.T) {
	var gotBody addRecordsRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"records":[{"id":11},{"id":12}]}`)
	}))

	ids, err := client.AddRecords(context.Background(), TableBatchMS, []map[string]any{
		{"part_name": "Side Panel"},
		{"part_name": "Base Frame"},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{11, 12}, ids)
	require.Len(t, gotBody.Records, 2)
	assert.Equal(t, "Side Panel", gotBody.Records[0].Fields["part_name"])
}

func TestClientPatchRecord(t *testing.T) {
	var gotBody patchRecordsRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"records":[]}`)
	}))

	err := client.PatchRecord(context.Background(), TableBatchMaster, 7, map[string]any{"overall_status": "In Progress"})
	require.NoError(t, err)

	require.Len(t, gotBody.Records, 1)
	assert.Equal(t, 7, gotBody.Records[0].ID)
	assert.Equal(t, "In Progress", gotBody.Records[0].Fields["overall_status"])
}

func TestClientRetriesTransientFailures(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"records":[]}`)
	}))

	_, err := client.GetRecords(context.Background(), TableBatchMaster, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := client.GetRecords(context.Background(), TableBatchMaster, nil)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeRemoteStoreError, appErr.Code)
}

func TestClientExhaustsRetries(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.GetRecords(context.Background(), TableBatchMaster, nil)
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestEncodeFilter(t *testing.T) {
	encoded, err := encodeFilter(map[string]any{
		"batch_id": "abc",
		"part_id":  []any{1, 2},
	})
	require.NoError(t, err)

	var decoded map[string][]any
	require.NoError(t, json.Unmarshal([]byte(encoded), &decoded))
	assert.Equal(t, []any{"abc"}, decoded["batch_id"])
	assert.Equal(t, []any{1.0, 2.0}, decoded["part_id"])

	// The encoded filter must survive query escaping.
	escaped := url.QueryEscape(encoded)
	unescaped, err := url.QueryUnescape(escaped)
	require.NoError(t, err)
	assert.Equal(t, encoded, unescaped)
}
