package hostapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_BearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"users":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, "test-token")
	_, err := client.ListUsers(context.Background(), "")

	require.NoError(t, err)
}

func TestClient_NonOKIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "upstream exploded"})
	}))
	defer server.Close()

	client := New(server.URL, "token")
	_, err := client.ListUsers(context.Background(), "")

	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.False(t, apiErr.IsNotFound())
}

func TestClient_ErrorWithoutJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("plain text failure"))
	}))
	defer server.Close()

	client := New(server.URL, "token")
	_, err := client.APIRoot(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "plain text failure", apiErr.Message)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := New(server.URL, "token")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListUsers(ctx, "")
	assert.Error(t, err)
}

func TestClient_Observer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var gotMethod string
	var gotStatus int
	client := New(server.URL, "token", WithObserver(func(method string, statusCode int) {
		gotMethod = method
		gotStatus = statusCode
	}))

	_, _ = client.APIRoot(context.Background())

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, http.StatusNotFound, gotStatus)
}
