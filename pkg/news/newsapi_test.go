package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func newTestNewsAPIClient(srv *httptest.Server) *NewsAPIClient {
	client := &NewsAPIClient{
		apiKey:     "test-key",
		httpClient: srv.Client(),
		now:        func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
	client.httpClient.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}
	return client
}

func TestNewsAPISearch(t *testing.T) {
	var gotQuery map[string]string

	payload := map[string]interface{}{
		"status":       "ok",
		"totalResults": 2,
		"articles": []map[string]interface{}{
			{
				"source":      map[string]interface{}{"id": nil, "name": "Reuters"},
				"author":      "Jane Doe",
				"title":       "Markets Rally",
				"description": "Stocks rose on Tuesday.",
				"url":         "https://example.com/markets",
				"urlToImage":  "https://example.com/markets.png",
				"publishedAt": "2024-02-27T10:00:00Z",
			},
			{
				"source":      map[string]interface{}{"id": nil, "name": "Wire"},
				"author":      nil,
				"title":       "",
				"description": nil,
				"url":         nil,
				"urlToImage":  nil,
				"publishedAt": "",
			},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"q":        r.URL.Query().Get("q"),
			"page":     r.URL.Query().Get("page"),
			"pageSize": r.URL.Query().Get("pageSize"),
			"apiKey":   r.URL.Query().Get("apiKey"),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	client := newTestNewsAPIClient(srv)

	articles, err := client.Search(context.Background(), "golang", 2, 5)

	assert.Equal(t, nil, err)
	assert.Equal(t, "golang", gotQuery["q"])
	assert.Equal(t, "2", gotQuery["page"])
	assert.Equal(t, "5", gotQuery["pageSize"])
	assert.Equal(t, "test-key", gotQuery["apiKey"])
	assert.Equal(t, 2, len(articles))

	a := articles[0]
	assert.Equal(t, "Markets Rally", a.Title)
	assert.Equal(t, "Jane Doe", *a.Author)
	assert.Equal(t, "2024-02-27T10:00:00Z", a.PublishedAt)
	assert.Equal(t, "Stocks rose on Tuesday.", a.Description)
	assert.Equal(t, "https://example.com/markets", a.URL)
	assert.Equal(t, "https://example.com/markets.png", *a.URLToImage)
	assert.Equal(t, TypeNews, a.Type)

	b := articles[1]
	assert.Equal(t, UntitledTitle, b.Title)
	assert.Equal(t, true, b.Author == nil)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", b.PublishedAt)
	assert.Equal(t, "", b.Description)
	assert.Equal(t, "", b.URL)
	assert.Equal(t, true, b.URLToImage == nil)
	assert.Equal(t, TypeNews, b.Type)
}

func TestNewsAPISearch_NonSuccessStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestNewsAPIClient(srv)

	articles, err := client.Search(context.Background(), "golang", 1, 10)

	var se *StatusError
	assert.Equal(t, true, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, 0, len(articles))
	assert.Equal(t, 1, calls)
}

func TestNewsAPISearch_NoAPIKey(t *testing.T) {
	client := NewNewsAPIClient("")

	_, err := client.Search(context.Background(), "golang", 1, 10)

	assert.Equal(t, ErrNoAPIKey, err)
}

// rewriteTransport redirects all requests to a fixed base URL (test server).
type rewriteTransport struct {
	base  string
	inner http.RoundTripper
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	parsed, _ := http.NewRequest("GET", rt.base, nil)
	req2.URL.Host = parsed.URL.Host
	req2.URL.Scheme = parsed.URL.Scheme
	return rt.inner.RoundTrip(req2)
}
