package view

import (
	"moviehouse/internal/clients/metadata"
	"moviehouse/internal/models"
)

type family int

const (
	familyListing family = iota
	familySearch
	familyTrailer
	familyCount
)

func (f family) String() string {
	switch f {
	case familyListing:
		return "listing"
	case familySearch:
		return "search"
	case familyTrailer:
		return "trailer"
	}
	return "unknown"
}

// fences tags every fetch with a per-family sequence number. A completion is
// applied only if its sequence is still the latest issued for its family,
// so a slow stale response can never overwrite a newer one.
type fences struct {
	latest  [familyCount]uint64
	pending [familyCount]bool
}

func (f *fences) issue(fam family) uint64 {
	f.latest[fam]++
	f.pending[fam] = true
	return f.latest[fam]
}

// settle reports whether seq is current and, if so, marks the family idle.
func (f *fences) settle(fam family, seq uint64) bool {
	if seq != f.latest[fam] {
		return false
	}
	f.pending[fam] = false
	return true
}

// invalidate makes every outstanding request of the family stale.
func (f *fences) invalidate(fam family) {
	f.latest[fam]++
	f.pending[fam] = false
}

func (f *fences) inFlight(fam family) bool {
	return f.pending[fam]
}

func (c *Controller) beginFetch(fam family) uint64 {
	c.state.Error = ""
	c.retry[fam] = nil
	seq := c.fences.issue(fam)
	c.refreshFlags()
	return seq
}

func (c *Controller) fetchListing() {
	s := &c.state
	mediaType, category := s.Type, s.Category
	seq := c.beginFetch(familyListing)
	c.logger.Debug("Fetching", category, mediaType, "listing, seq", seq)

	ctx := c.ctx
	go func() {
		items, err := c.client.Listing(ctx, mediaType, category)
		c.do(func() { c.applyListing(seq, items, err) })
	}()
}

func (c *Controller) applyListing(seq uint64, items []models.Item, err error) {
	if !c.fences.settle(familyListing, seq) {
		c.logger.Debug("Discarding stale listing response, seq", seq)
		return
	}
	defer c.refreshFlags()

	if err != nil {
		c.logger.Error("Listing fetch failed:", err)
		c.state.Error = ListingErrorMessage
		c.retry[familyListing] = c.fetchListing
		return
	}

	c.state.Items = items
	if len(items) > 0 {
		featured := items[0]
		c.setFeatured(&featured)
	} else {
		c.setFeatured(nil)
	}
}

func (c *Controller) fetchSearch(query string) {
	mediaType := c.state.Type
	seq := c.beginFetch(familySearch)
	c.logger.Debug("Searching", mediaType, "for", query, "seq", seq)

	ctx := c.ctx
	go func() {
		items, err := c.client.Search(ctx, mediaType, query)
		c.do(func() { c.applySearch(seq, query, items, err) })
	}()
}

func (c *Controller) applySearch(seq uint64, query string, items []models.Item, err error) {
	if !c.fences.settle(familySearch, seq) {
		c.logger.Debug("Discarding stale search response for", query)
		return
	}
	defer c.refreshFlags()

	if err != nil {
		c.logger.Error("Search failed:", err)
		c.state.Error = SearchErrorMessage
		c.retry[familySearch] = func() { c.fetchSearch(query) }
		return
	}

	c.state.SearchResults = items
	c.searchedQuery = query
}

// setFeatured swaps the hero item and looks up its trailer.
func (c *Controller) setFeatured(item *models.Item) {
	s := &c.state
	if item != nil && s.Featured != nil && item.Key() == s.Featured.Key() {
		s.Featured = item
		return
	}

	s.Featured = item
	s.TrailerKey = ""
	c.fences.invalidate(familyTrailer)
	if item != nil {
		c.fetchTrailer(*item)
	}
}

// Trailer lookups are best effort: failures are logged and never reach the
// user-facing error.
func (c *Controller) fetchTrailer(item models.Item) {
	seq := c.fences.issue(familyTrailer)

	ctx := c.ctx
	go func() {
		videos, err := c.client.Videos(ctx, item.Type, item.ID)
		c.do(func() {
			if !c.fences.settle(familyTrailer, seq) {
				return
			}
			if err != nil {
				c.logger.Error("Trailer fetch failed for", item.DisplayTitle(), ":", err)
				return
			}
			c.state.TrailerKey = metadata.TrailerKey(videos)
		})
	}()
}
