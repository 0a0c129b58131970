package sportmonks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/matchpulse/sportsync/internal/platform/logging"
	"github.com/matchpulse/sportsync/internal/platform/resilience"
)

// pageServer serves a 3-page collection of 50/50/20 records using one
// of the provider's pagination signal styles.
func pageServer(t *testing.T, signal string) *httptest.Server {
	t.Helper()

	pageSizes := []int{50, 50, 20}
	nextID := 1
	firstID := make([]int, len(pageSizes))
	for i, size := range pageSizes {
		firstID[i] = nextID
		nextID += size
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 || page > len(pageSizes) {
			w.Write([]byte(`{"data": []}`))
			return
		}

		data := "["
		for i := 0; i < pageSizes[page-1]; i++ {
			if i > 0 {
				data += ","
			}
			data += fmt.Sprintf(`{"id": %d}`, firstID[page-1]+i)
		}
		data += "]"

		var pagination string
		switch signal {
		case "next_page":
			if page < len(pageSizes) {
				pagination = fmt.Sprintf(`{"next_page": "https://api.example.test/v3/things?page=%d"}`, page+1)
			} else {
				pagination = `{"next_page": null}`
			}
		case "has_more":
			pagination = fmt.Sprintf(`{"current_page": %d, "has_more": %t}`, page, page < len(pageSizes))
		case "total_pages":
			pagination = fmt.Sprintf(`{"current_page": %d, "total_pages": %d}`, page, len(pageSizes))
		default:
			t.Fatalf("unknown signal style %q", signal)
		}

		fmt.Fprintf(w, `{"data": %s, "pagination": %s}`, data, pagination)
	}))
}

func testClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		Token:          "test-token",
		MaxRetries:     maxRetries,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})
}

func TestForEachPage_CompletenessAcrossSignals(t *testing.T) {
	for _, signal := range []string{"next_page", "has_more", "total_pages"} {
		t.Run(signal, func(t *testing.T) {
			server := pageServer(t, signal)
			defer server.Close()

			client := testClient(t, server.URL, 0)

			var ids []int64
			var pages []int
			err := client.ForEachPage(context.Background(), "/things", PageOptions{PerPage: 50}, func(page Page) error {
				pages = append(pages, page.Number)
				for _, record := range page.Records {
					id, ok := record.Int64("id")
					if !ok {
						t.Fatalf("record without id on page %d", page.Number)
					}
					ids = append(ids, id)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("walk pages: %v", err)
			}

			if len(ids) != 120 {
				t.Fatalf("expected 120 records, got %d", len(ids))
			}
			for i, id := range ids {
				if id != int64(i+1) {
					t.Fatalf("records out of order at index %d: got %d", i, id)
				}
			}
			if len(pages) != 3 {
				t.Fatalf("expected 3 page callbacks, got %d", len(pages))
			}
		})
	}
}

func TestForEachPage_StopsOnEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 0)
	calls := 0
	err := client.ForEachPage(context.Background(), "/things", PageOptions{}, func(Page) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("walk pages: %v", err)
	}
	if calls != 0 {
		t.Fatalf("empty page must not reach the callback, got %d calls", calls)
	}
}

func TestForEachPage_PopulateMode(t *testing.T) {
	var gotFilters, gotPerPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilters = r.URL.Query().Get("filters")
		gotPerPage = r.URL.Query().Get("per_page")
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:        server.URL,
		Token:          "test-token",
		Populate:       true,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})

	if err := client.ForEachPage(context.Background(), "/teams", PageOptions{}, func(Page) error { return nil }); err != nil {
		t.Fatalf("walk pages: %v", err)
	}
	if gotFilters != "populate" || gotPerPage != "1000" {
		t.Fatalf("expected populate filters with per_page 1000, got filters=%q per_page=%q", gotFilters, gotPerPage)
	}

	// An explicit include suppresses populate mode.
	if err := client.ForEachPage(context.Background(), "/teams", PageOptions{Includes: "country"}, func(Page) error { return nil }); err != nil {
		t.Fatalf("walk pages with include: %v", err)
	}
	if gotFilters == "populate" {
		t.Fatalf("populate must not engage when includes are requested")
	}
}

func TestForEachPage_IDAfterFilter(t *testing.T) {
	var gotFilters string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilters = r.URL.Query().Get("filters")
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 0)
	err := client.ForEachPage(context.Background(), "/teams", PageOptions{IDAfter: 540}, func(Page) error { return nil })
	if err != nil {
		t.Fatalf("walk pages: %v", err)
	}
	if gotFilters != "idAfter:540" {
		t.Fatalf("unexpected filters: %q", gotFilters)
	}
}

func TestFetchSingle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"id": 42, "name": "thing"}}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 0)
	record, err := client.FetchSingle(context.Background(), "/things/42", PageOptions{})
	if err != nil {
		t.Fatalf("fetch single: %v", err)
	}
	if id, _ := record.Int64("id"); id != 42 {
		t.Fatalf("unexpected record: %+v", record)
	}
}
