package pathfinder

import (
	"context"
	"fmt"

	"github.com/desertthunder/dailydrive/internal/shared"
)

const (
	DefaultPageLimit = 50
	DefaultMaxPages  = 200
)

// Page is one page of a paged collection.
//
// Header is the enclosing object (e.g. data.playlistV2), Items its raw entries and Total the declared count.
// HasTotal is false when the page declared no count.
type Page struct {
	Header   Object
	Items    []any
	Total    int
	HasTotal bool
}

// PageFunc fetches the page starting at offset.
type PageFunc func(ctx context.Context, offset, limit int) (Page, error)

// Pager accumulates pages sequentially until the declared total is reached.
type Pager struct {
	Limit    int
	MaxPages int
}

// Collect fetches pages at offsets 0, limit, 2*limit... and returns the first page's header with every item.
//
// The result never holds more than the most recently declared total. A page that declares no
// total ends the collection with every item gathered so far kept. A page that adds nothing
// before the total is reached, or exceeding MaxPages, aborts with [shared.ErrPaginationStalled].
func (p Pager) Collect(ctx context.Context, fetch PageFunc) (Page, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var result Page
	for pages := 0; ; pages++ {
		if pages >= maxPages {
			return Page{}, fmt.Errorf("%w: %d of %d items after %d pages", shared.ErrPaginationStalled, len(result.Items), result.Total, pages)
		}
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}

		offset := pages * limit
		page, err := fetch(ctx, offset, limit)
		if err != nil {
			return Page{}, fmt.Errorf("page at offset %d: %w", offset, err)
		}

		if pages == 0 {
			result.Header = page.Header
		}
		result.Items = append(result.Items, page.Items...)
		result.Total, result.HasTotal = page.Total, page.HasTotal

		if !result.HasTotal {
			result.Total = len(result.Items)
			break
		}
		if len(result.Items) >= result.Total {
			break
		}
		if len(page.Items) == 0 {
			return Page{}, fmt.Errorf("%w: empty page at offset %d with %d of %d items", shared.ErrPaginationStalled, offset, len(result.Items), result.Total)
		}
	}

	if len(result.Items) > result.Total {
		result.Items = result.Items[:result.Total]
	}
	return result, nil
}
