package sportmonks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// PageOptions narrow a collection walk. IDAfter resumes a stream past
// already-ingested provider ids via the idAfter filter.
type PageOptions struct {
	Filters  string
	Includes string
	PerPage  int
	IDAfter  int64
	Order    string
}

// Page is one decoded page of a collection endpoint.
type Page struct {
	Number  int
	Records []Raw
}

// PageFunc handles one page. Returning an error stops the walk; the
// store commits once per callback, so a stop leaves the stream at the
// last committed page boundary.
type PageFunc func(page Page) error

const defaultPerPage = 50

// ForEachPage walks a paginated collection endpoint from page 1,
// invoking fn once per non-empty page. The next page is chosen from
// the provider's pagination metadata in priority order: explicit
// next_page token or URL, has_more flag, current_page < total_pages.
func (c *Client) ForEachPage(ctx context.Context, path string, opts PageOptions, fn PageFunc) error {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	filters := strings.TrimSpace(opts.Filters)
	includes := strings.TrimSpace(opts.Includes)
	if c.populate && filters == "" && includes == "" {
		// Populate mode: the provider lifts the page-size ceiling when
		// no field selection is requested.
		filters = "populate"
		perPage = populatePageSize
	}
	if opts.IDAfter > 0 {
		idAfter := "idAfter:" + strconv.FormatInt(opts.IDAfter, 10)
		if filters == "" {
			filters = idAfter
		} else {
			filters += ";" + idAfter
		}
	}

	page := 1
	for {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(perPage))
		if filters != "" {
			query.Set("filters", filters)
		}
		if includes != "" {
			query.Set("include", includes)
		}
		if opts.Order != "" {
			query.Set("order", opts.Order)
		}

		raw, err := c.get(ctx, path, query)
		if err != nil {
			return err
		}
		envelope, err := decodeRaw(raw)
		if err != nil {
			return fmt.Errorf("decode page %d of %s: %w", page, path, err)
		}

		records := envelope.Slice("data")
		if len(records) == 0 {
			return nil
		}
		if err := fn(Page{Number: page, Records: records}); err != nil {
			return err
		}

		next, ok := nextPageNumber(envelope, page)
		if !ok {
			if len(records) < perPage {
				return nil
			}
			next = page + 1
		}
		if next <= page {
			return nil
		}
		page = next
	}
}

// ForEach adapts ForEachPage to a per-record callback.
func (c *Client) ForEach(ctx context.Context, path string, opts PageOptions, fn func(record Raw) error) error {
	return c.ForEachPage(ctx, path, opts, func(page Page) error {
		for _, record := range page.Records {
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// FetchSingle fetches a single-resource endpoint and returns its data
// object.
func (c *Client) FetchSingle(ctx context.Context, path string, opts PageOptions) (Raw, error) {
	query := url.Values{}
	if filters := strings.TrimSpace(opts.Filters); filters != "" {
		query.Set("filters", filters)
	}
	if includes := strings.TrimSpace(opts.Includes); includes != "" {
		query.Set("include", includes)
	}

	raw, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	envelope, err := decodeRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	data := envelope.Map("data")
	if data == nil {
		return nil, fmt.Errorf("missing data object in %s response", path)
	}
	return data, nil
}

// nextPageNumber resolves the next page from the envelope's pagination
// block, which lives either top-level or under meta.
func nextPageNumber(envelope Raw, current int) (int, bool) {
	pagination := envelope.Map("pagination")
	if pagination == nil {
		pagination = envelope.Map("meta").Map("pagination")
	}
	if pagination == nil {
		return 0, false
	}

	if next, ok := pagination.Int64("next_page"); ok && next > 0 {
		return int(next), true
	}
	if nextURL := pagination.String("next_page"); nextURL != "" {
		if parsed := parsePageParam(nextURL); parsed > 0 {
			return parsed, true
		}
	}
	if hasMore, present := pagination["has_more"]; present {
		if b, ok := hasMore.(bool); ok {
			if b {
				return current + 1, true
			}
			return 0, false
		}
	}
	currentPage, okCurrent := pagination.Int64("current_page")
	totalPages, okTotal := pagination.Int64("total_pages")
	if okCurrent && okTotal {
		if currentPage < totalPages {
			return int(currentPage) + 1, true
		}
		return 0, false
	}

	return 0, false
}

func parsePageParam(rawURL string) int {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return 0
	}
	page, err := strconv.Atoi(parsed.Query().Get("page"))
	if err != nil || page <= 0 {
		return 0
	}
	return page
}
