// Package pager windows the range of past puzzle ids [1, limit] for the
// "choose a game" list. Pages are always ordered most recent first.
package pager

import "slices"

// DefaultSize is the number of ids per page (three keyboard rows of three).
const DefaultSize = 9

// Page is one window of ids. A zero cursor means there is no page in that
// direction; id 0 is never a valid puzzle.
type Page struct {
	IDs  []int `json:"ids"`
	Next int   `json:"next,omitempty"` // oldest id of the newer page
	Back int   `json:"back,omitempty"` // newest id of the older page
}

// HasNext reports whether a newer page exists.
func (p Page) HasNext() bool { return p.Next > 0 }

// HasBack reports whether an older page exists.
func (p Page) HasBack() bool { return p.Back > 0 }

// Pager produces pages over [1, limit].
type Pager struct {
	limit int
	size  int
}

// New returns a Pager whose largest valid id is limit.
func New(limit int) *Pager {
	return &Pager{limit: limit, size: DefaultSize}
}

// WithSize returns a copy of the pager using n ids per page.
func (p *Pager) WithSize(n int) *Pager {
	c := *p
	if n > 0 {
		c.size = n
	}
	return &c
}

// Limit returns the largest valid id.
func (p *Pager) Limit() int { return p.limit }

// Back returns up to size ids counting down from startExclusive-1, stopping at 1.
func (p *Pager) Back(startExclusive int) Page {
	var ids []int
	for id := min(startExclusive-1, p.limit); id >= 1 && len(ids) < p.size; id-- {
		ids = append(ids, id)
	}
	return p.page(ids)
}

// Next returns up to size ids counting up from startInclusive, stopping at limit.
func (p *Pager) Next(startInclusive int) Page {
	var ids []int
	for id := max(startInclusive, 1); id <= p.limit && len(ids) < p.size; id++ {
		ids = append(ids, id)
	}
	return p.page(ids)
}

// Older returns the page whose newest id is the cursor (a Page.Back value).
func (p *Pager) Older(cursor int) Page { return p.Back(cursor + 1) }

// Newer returns the page whose oldest id is the cursor (a Page.Next value).
func (p *Pager) Newer(cursor int) Page { return p.Next(cursor) }

func (p *Pager) page(ids []int) Page {
	if len(ids) == 0 {
		return Page{IDs: []int{}}
	}
	slices.Sort(ids)
	slices.Reverse(ids)

	out := Page{IDs: ids}
	if back := ids[len(ids)-1] - 1; back >= 1 {
		out.Back = back
	}
	if next := ids[0] + 1; next <= p.limit {
		out.Next = next
	}
	return out
}
