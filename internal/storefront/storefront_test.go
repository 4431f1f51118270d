package storefront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/storesearch/", r.URL.Path)
		assert.Equal(t, "portal", r.URL.Query().Get("term"))
		assert.Equal(t, "20", r.URL.Query().Get("count"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":400,"name":"Portal"},{"id":620,"name":"Portal 2"}]}`))
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL).Search(context.Background(), "portal")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, Item{ID: 400, Name: "Portal"}, items[0])
	assert.Equal(t, Item{ID: 620, Name: "Portal 2"}, items[1])
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL).Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Search(context.Background(), "portal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestSearch_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Search(context.Background(), "portal")
	require.Error(t, err)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
