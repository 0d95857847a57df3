package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingBody(t *testing.T, children ...map[string]any) []byte {
	t.Helper()
	body := map[string]any{
		"data": map[string]any{"children": children},
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return data
}

func t3(id, title string) map[string]any {
	return map[string]any{
		"kind": "t3",
		"data": map[string]any{
			"id":        id,
			"title":     title,
			"permalink": "/r/shrinkflation/comments/" + id + "/post/",
		},
	}
}

func TestListingParsesAndFiltersKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/shrinkflation/new.json", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("raw_json"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Write(listingBody(t,
			t3("aaa", "Cereal box got smaller"),
			map[string]any{"kind": "t5", "data": map[string]any{"id": "sub"}},
			t3("bbb", "Chips are mostly air now"),
		))
	}))
	defer srv.Close()

	c := NewClient(Config{ListingURL: srv.URL})
	posts, err := c.Listing(context.Background(), "new", "")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "aaa", posts[0].ID)
	assert.Equal(t, "bbb", posts[1].ID)
	assert.Equal(t, "https://reddit.com/r/shrinkflation/comments/aaa/post/", posts[0].SourceURL())
}

func TestListingPagesPaginatesWithAfter(t *testing.T) {
	var afters []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after")
		afters = append(afters, after)

		switch after {
		case "":
			w.Write(listingBody(t, t3("p1", "one"), t3("p2", "two")))
		case "t3_p2":
			w.Write(listingBody(t, t3("p3", "three")))
		default:
			w.Write(listingBody(t))
		}
	}))
	defer srv.Close()

	c := NewClient(Config{ListingURL: srv.URL})
	posts := c.ListingPages(context.Background(), "new", 10)

	require.Len(t, posts, 3)
	assert.Equal(t, []string{"", "t3_p2", "t3_p3"}, afters)
}

func TestListingPagesStopsAtMaxPages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Write(listingBody(t, t3(fmt.Sprintf("p%d", n), "post")))
	}))
	defer srv.Close()

	c := NewClient(Config{ListingURL: srv.URL})
	posts := c.ListingPages(context.Background(), "hot", 2)

	assert.Len(t, posts, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListingPagesKeepsPartialResultsOnFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write(listingBody(t, t3("p1", "one")))
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{ListingURL: srv.URL})
	posts := c.ListingPages(context.Background(), "new", 10)

	assert.Len(t, posts, 1)
}

func TestArchiveAllWalksUntilEmpty(t *testing.T) {
	var befores []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shrinkflation", r.URL.Query().Get("subreddit"))
		assert.Equal(t, "desc", r.URL.Query().Get("sort"))
		assert.Equal(t, "created_utc", r.URL.Query().Get("sort_type"))

		before := r.URL.Query().Get("before")
		befores = append(befores, before)

		var resp archiveResponse
		switch before {
		case "":
			resp.Data = []Post{
				{ID: "n1", CreatedUTC: 2000},
				{ID: "n2", CreatedUTC: 1500},
			}
		case "1500":
			resp.Data = []Post{{ID: "n3", CreatedUTC: 900}}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(Config{ArchiveURL: srv.URL})
	posts := c.ArchiveAll(context.Background())

	require.Len(t, posts, 3)
	assert.Equal(t, []string{"", "1500", "900"}, befores)
}

func TestArchiveAllKeepsPartialResultsOnFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			json.NewEncoder(w).Encode(archiveResponse{Data: []Post{{ID: "n1", CreatedUTC: 2000}}})
			return
		}
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	c := NewClient(Config{ArchiveURL: srv.URL})
	posts := c.ArchiveAll(context.Background())

	assert.Len(t, posts, 1)
}

func TestGetRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write(listingBody(t, t3("ok", "finally")))
	}))
	defer srv.Close()

	c := NewClient(Config{ListingURL: srv.URL})
	posts, err := c.Listing(context.Background(), "new", "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such subreddit", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{ListingURL: srv.URL})
	_, err := c.Listing(context.Background(), "new", "")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
