package identity

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rbac-janitor/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_QueryExisting_OK(t *testing.T) {
	var gotBody filteredRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, filteredPrincipalsPath, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"user_id":"123456"},{"user_id":"222222"}]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "secret", Options{}, testLogger())
	res, err := c.QueryExisting(context.Background(),
		[]string{"123456", "222222", "999999"},
		domain.TenantSelector{OrgID: "org-1"})
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.True(t, res.Contains("123456"))
	assert.True(t, res.Contains("222222"))
	assert.False(t, res.Contains("999999"))

	assert.Equal(t, []string{"123456", "222222", "999999"}, gotBody.UserIDs)
	assert.Equal(t, "org-1", gotBody.OrgID)
	assert.Empty(t, gotBody.Account)
}

func TestClient_QueryExisting_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", Options{}, testLogger())
	res, err := c.QueryExisting(context.Background(), []string{"123456"}, domain.TenantSelector{Account: "10001"})
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.False(t, res.Contains("123456"))
}

func TestClient_QueryExisting_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", Options{}, testLogger())
	res, err := c.QueryExisting(context.Background(), []string{"123456"}, domain.TenantSelector{OrgID: "org-1"})
	require.NoError(t, err)

	assert.Equal(t, domain.LookupStatusUnavailable, res.Status)
	assert.False(t, res.OK())
}

func TestClient_QueryExisting_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", Options{}, testLogger())
	res, err := c.QueryExisting(context.Background(), []string{"123456"}, domain.TenantSelector{OrgID: "org-1"})
	require.NoError(t, err)

	assert.Equal(t, domain.LookupStatusUnexpected, res.Status)
}

func TestClient_QueryExisting_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "", Options{Timeout: 20 * time.Millisecond}, testLogger())
	res, err := c.QueryExisting(context.Background(), []string{"123456"}, domain.TenantSelector{OrgID: "org-1"})
	require.NoError(t, err)

	assert.Equal(t, domain.LookupStatusTimeout, res.Status)
}

func TestClient_QueryExisting_ConnectionRefused(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", Options{Timeout: time.Second}, testLogger())
	res, err := c.QueryExisting(context.Background(), []string{"123456"}, domain.TenantSelector{OrgID: "org-1"})
	require.NoError(t, err)

	assert.Equal(t, domain.LookupStatusUnavailable, res.Status)
}

func TestClient_QueryExisting_MissingSelector(t *testing.T) {
	c := NewClient("http://example.invalid", "", Options{}, testLogger())
	_, err := c.QueryExisting(context.Background(), []string{"123456"}, domain.TenantSelector{})

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}
