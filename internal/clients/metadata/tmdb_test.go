package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviehouse/internal/models"
)

func TestListingPath(t *testing.T) {
	tests := []struct {
		typ  models.MediaType
		cat  models.Category
		want string
	}{
		{models.MediaTypeMovie, models.CategoryTrending, "/trending/movie/week"},
		{models.MediaTypeMovie, models.CategoryPopular, "/movie/popular"},
		{models.MediaTypeMovie, models.CategoryTopRated, "/movie/top_rated"},
		{models.MediaTypeMovie, models.CategoryUpcoming, "/movie/upcoming"},
		{models.MediaTypeTV, models.CategoryTrending, "/trending/tv/week"},
		{models.MediaTypeTV, models.CategoryPopular, "/tv/popular"},
		{models.MediaTypeTV, models.CategoryTopRated, "/tv/top_rated"},
		{models.MediaTypeTV, models.CategoryUpcoming, "/tv/on_the_air"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ListingPath(tt.typ, tt.cat))
	}
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestTMDBListing(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trending/movie/week", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		w.Write([]byte(`{"results":[{"id":1,"title":"A","poster_path":"/a.jpg"},{"id":2,"title":"B"}]}`))
	})

	client := NewTMDBClient("secret", "en-US", WithBaseURL(srv.URL), WithRateLimit(0))
	items, err := client.Listing(context.Background(), models.MediaTypeMovie, models.CategoryTrending)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].DisplayTitle())
	assert.Equal(t, models.MediaTypeMovie, items[0].Type)
	assert.Equal(t, "/a.jpg", items[0].PosterPath)
	assert.Equal(t, 2, items[1].ID)
}

func TestTMDBSearchEscapesQuery(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/tv", r.URL.Path)
		assert.Equal(t, "the office & co", r.URL.Query().Get("query"))
		w.Write([]byte(`{"results":[{"id":9,"name":"The Office"}]}`))
	})

	client := NewTMDBClient("secret", "", WithBaseURL(srv.URL))
	items, err := client.Search(context.Background(), models.MediaTypeTV, "the office & co")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "The Office", items[0].DisplayTitle())
	assert.Equal(t, models.MediaTypeTV, items[0].Type)
}

func TestTMDBMissingOrMalformedResults(t *testing.T) {
	for _, body := range []string{`{}`, `{"results":null}`, `{"results":"nope"}`} {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		client := NewTMDBClient("secret", "", WithBaseURL(srv.URL))
		items, err := client.Listing(context.Background(), models.MediaTypeMovie, models.CategoryPopular)
		require.NoError(t, err, body)
		assert.Empty(t, items, body)
	}
}

func TestTMDBErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		var calls int32
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		})
		client := NewTMDBClient("", "", WithBaseURL(srv.URL))
		_, err := client.Listing(context.Background(), models.MediaTypeMovie, models.CategoryTrending)
		assert.ErrorIs(t, err, ErrResponse)
		assert.Zero(t, atomic.LoadInt32(&calls))
	})

	t.Run("bad status", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		client := NewTMDBClient("bad", "", WithBaseURL(srv.URL))
		_, err := client.Search(context.Background(), models.MediaTypeMovie, "x")
		require.ErrorIs(t, err, ErrResponse)
		var tmdbErr *Error
		require.True(t, errors.As(err, &tmdbErr))
		assert.Equal(t, http.StatusUnauthorized, tmdbErr.Status)
	})

	t.Run("not json", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		})
		client := NewTMDBClient("secret", "", WithBaseURL(srv.URL))
		_, err := client.Listing(context.Background(), models.MediaTypeTV, models.CategoryTopRated)
		assert.ErrorIs(t, err, ErrResponse)
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := NewTMDBClient("secret", "", WithBaseURL(srv.URL))
		_, err := client.Listing(context.Background(), models.MediaTypeTV, models.CategoryTopRated)
		assert.ErrorIs(t, err, ErrNetwork)
		assert.NotErrorIs(t, err, ErrResponse)
	})
}

func TestTMDBVideosAndTrailerKey(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/42/videos", r.URL.Path)
		w.Write([]byte(`{"results":[
			{"key":"teaser","site":"YouTube","type":"Teaser"},
			{"key":"vimeo","site":"Vimeo","type":"Trailer"},
			{"key":"yt","site":"YouTube","type":"Trailer"}
		]}`))
	})

	client := NewTMDBClient("secret", "", WithBaseURL(srv.URL))
	videos, err := client.Videos(context.Background(), models.MediaTypeTV, 42)
	require.NoError(t, err)
	assert.Len(t, videos, 3)
	assert.Equal(t, "yt", TrailerKey(videos))
	assert.Empty(t, TrailerKey(videos[:2]))
}

func TestTMDBSetCredentials(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	})

	client := NewTMDBClient("old", "", WithBaseURL(srv.URL))
	_, err := client.Listing(context.Background(), models.MediaTypeMovie, models.CategoryPopular)
	require.ErrorIs(t, err, ErrResponse)

	client.SetCredentials("new", "de-DE")
	_, err = client.Listing(context.Background(), models.MediaTypeMovie, models.CategoryPopular)
	require.NoError(t, err)
}
