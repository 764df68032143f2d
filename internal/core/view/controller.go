package view

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"moviehouse/internal/clients/metadata"
	"moviehouse/internal/models"
	"moviehouse/internal/utils"
)

const searchControl = "search"

type Options struct {
	Debounce       time.Duration
	MinQueryLength int
	EmbedURL       string
	TrailerURL     string
	ImageURL       string
	Scheduler      Scheduler
	Logger         *utils.Logger
}

func (o *Options) setDefaults() {
	if o.Debounce <= 0 {
		o.Debounce = 500 * time.Millisecond
	}
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = 2
	}
	if o.EmbedURL == "" {
		o.EmbedURL = "https://vidsrc.to/embed"
	}
	if o.TrailerURL == "" {
		o.TrailerURL = "https://www.youtube.com/embed"
	}
	if o.ImageURL == "" {
		o.ImageURL = "https://image.tmdb.org/t/p/original"
	}
	if o.Scheduler == nil {
		o.Scheduler = NewTimerScheduler()
	}
	if o.Logger == nil {
		o.Logger = utils.Discard()
	}
}

type event struct {
	fn      func()
	publish bool
}

// Controller owns one ViewState and serializes every change to it on a
// single event loop: user input, debounce timer fires and fetch completions
// all arrive as events.
type Controller struct {
	client metadata.Client
	opts   Options
	sched  Scheduler
	logger *utils.Logger

	events chan event
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	start  sync.Once

	// Loop-owned
	state         State
	fences        fences
	searchToken   Token
	searchedQuery string
	retry         [familyCount]func() // set while a family's last fetch failed
	effects       []Effect
	version       uint64

	last atomic.Pointer[View]

	subMu   sync.Mutex
	subs    map[int]chan View
	nextSub int
}

func NewController(client metadata.Client, opts Options) *Controller {
	opts.setDefaults()
	c := &Controller{
		client: client,
		opts:   opts,
		sched:  opts.Scheduler,
		logger: opts.Logger,
		events: make(chan event, 64),
		done:   make(chan struct{}),
		state:  initialState(),
		subs:   make(map[int]chan View),
	}
	v := c.view()
	c.last.Store(&v)
	return c
}

// Start runs the event loop until ctx is cancelled or Stop is called, and
// issues the initial listing fetch.
func (c *Controller) Start(ctx context.Context) {
	c.start.Do(func() {
		c.ctx, c.cancel = context.WithCancel(ctx)
		go c.loop()
		c.do(c.fetchListing)
	})
}

func (c *Controller) Stop() {
	c.start.Do(func() {
		c.ctx, c.cancel = context.WithCancel(context.Background())
		c.closeSubscribers()
		close(c.done)
	})
	c.cancel()
	<-c.done
	c.sched.Stop()
}

func (c *Controller) loop() {
	defer close(c.done)
	defer c.closeSubscribers()
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.events:
			ev.fn()
			if ev.publish {
				c.publish()
			}
		}
	}
}

func (c *Controller) post(ev event) bool {
	if c.ctx == nil {
		return false
	}
	select {
	case c.events <- ev:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// do queues a state change; subscribers get a fresh View after it runs.
func (c *Controller) do(fn func()) {
	c.post(event{fn: fn, publish: true})
}

// Snapshot returns the current view. Once the loop has stopped it returns
// the last published view.
func (c *Controller) Snapshot() View {
	reply := make(chan View, 1)
	if c.post(event{fn: func() { reply <- c.view() }}) {
		select {
		case v := <-reply:
			return v
		case <-c.done:
		}
	}
	return *c.last.Load()
}

// Subscribe delivers a View after every state change. The channel is closed
// when the controller stops or cancel is called.
func (c *Controller) Subscribe() (<-chan View, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	ch := make(chan View, 16)
	id := c.nextSub
	c.nextSub++
	if c.subs == nil {
		close(ch)
		return ch, func() {}
	}
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

func (c *Controller) publish() {
	c.version++
	v := c.view()
	c.effects = nil
	c.last.Store(&v)

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- v:
		default:
			// Slow reader: drop its oldest view so the latest one gets through
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

func (c *Controller) closeSubscribers() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.subs = nil
}

func (c *Controller) view() View {
	s := &c.state
	mode := s.Mode()

	categories := make([]CategoryLink, 0, len(models.Categories))
	for _, cat := range models.Categories {
		categories = append(categories, CategoryLink{
			Category: cat,
			Label:    cat.Label(s.Type),
			Active:   cat == s.Category,
		})
	}

	v := View{
		Version:       c.version,
		Mode:          mode,
		Category:      s.Category,
		CategoryLabel: s.Category.Label(s.Type),
		Categories:    categories,
		Type:          s.Type,
		ToggleLabel:   toggleLabel(s.Type),
		Query:         s.Query,
		Items:         cloneItems(s.Items),
		Featured:      cloneItem(s.Featured),
		SearchResults: cloneItems(s.SearchResults),
		IsSearching:   s.IsSearching,
		IsLoading:     s.IsLoading,
		Error:         s.Error,
		WatchTarget:   cloneItem(s.WatchTarget),
		TrailerKey:    s.TrailerKey,
		TrailerURL:    TrailerEmbedURL(c.opts.TrailerURL, s.TrailerKey),
		Detail:        cloneItem(s.DetailTarget),
		ImageBase:     c.opts.ImageURL,
		Placeholder:   models.PosterPlaceholder,
		Effects:       append([]Effect(nil), c.effects...),
	}
	if s.WatchTarget != nil {
		v.WatchURL = PlaybackURL(c.opts.EmbedURL, s.WatchTarget.Type, s.WatchTarget.ID)
	}
	v.NoResults = mode == ModeSearch &&
		!s.IsSearching && !s.IsLoading && s.Error == "" &&
		len(s.SearchResults) == 0 &&
		c.searchedQuery != "" && c.searchedQuery == strings.TrimSpace(s.Query)
	return v
}

// SetCategory switches the listing category and leaves search and playback.
// Re-selecting the current category only does the latter unless its last
// listing fetch failed, in which case the listing is fetched again.
func (c *Controller) SetCategory(cat models.Category) {
	c.do(func() { c.setCategory(cat) })
}

func (c *Controller) SetType(t models.MediaType) {
	c.do(func() { c.setType(t) })
}

// ToggleType flips between movies and TV.
func (c *Controller) ToggleType() {
	c.do(func() { c.setType(c.state.Type.Other()) })
}

func (c *Controller) OnQueryChange(text string) {
	c.do(func() { c.onQueryChange(text) })
}

// SubmitQuery searches for the current query right away.
func (c *Controller) SubmitQuery() {
	c.do(c.submitQuery)
}

func (c *Controller) ClearQuery() {
	c.do(func() {
		c.clearSearch()
		c.fetchListing()
	})
}

func (c *Controller) SelectItem(item models.Item) {
	c.do(func() { c.selectItem(item) })
}

// SelectItemByID starts playback of a visible item. Unknown ids are ignored.
func (c *Controller) SelectItemByID(id int) {
	c.do(func() {
		if item, ok := c.findItem(id); ok {
			c.selectItem(item)
		}
	})
}

func (c *Controller) ClosePlayback() {
	c.do(func() { c.state.WatchTarget = nil })
}

func (c *Controller) ShowDetails(item models.Item) {
	c.do(func() { c.state.DetailTarget = &item })
}

func (c *Controller) ShowDetailsByID(id int) {
	c.do(func() {
		if item, ok := c.findItem(id); ok {
			c.state.DetailTarget = &item
		}
	})
}

func (c *Controller) CloseDetails() {
	c.do(func() { c.state.DetailTarget = nil })
}

// GoHome returns to the trending listing of the current type.
func (c *Controller) GoHome() {
	c.do(func() {
		c.clearSearch()
		c.state.WatchTarget = nil
		c.state.DetailTarget = nil
		c.state.Category = models.CategoryTrending
		c.fetchListing()
	})
}

// Retry re-issues the failed fetch behind the current view: the search in
// search mode, otherwise the listing.
func (c *Controller) Retry() {
	c.do(func() {
		fam := familyListing
		if c.state.Mode() == ModeSearch && c.retry[familySearch] != nil {
			fam = familySearch
		}
		if fn := c.retry[fam]; fn != nil {
			fn()
		}
	})
}

func (c *Controller) setCategory(cat models.Category) {
	if !cat.Valid() {
		c.logger.Error("Ignoring unknown category:", cat)
		return
	}
	s := &c.state
	unchanged := cat == s.Category && s.Error == "" && c.retry[familyListing] == nil

	s.WatchTarget = nil
	c.clearSearch()
	s.Category = cat
	if unchanged {
		return
	}
	c.fetchListing()
}

func (c *Controller) setType(t models.MediaType) {
	if !t.Valid() {
		c.logger.Error("Ignoring unknown media type:", t)
		return
	}
	s := &c.state
	s.Type = t
	s.Category = models.CategoryTrending
	s.WatchTarget = nil
	c.clearSearch()
	c.fetchListing()
}

func (c *Controller) onQueryChange(text string) {
	s := &c.state
	s.Query = text
	trimmed := strings.TrimSpace(text)

	switch {
	case trimmed == "":
		c.clearSearch()
		s.Query = text
		c.fetchListing()
	case utf8.RuneCountInString(trimmed) >= c.opts.MinQueryLength:
		c.searchToken = c.sched.Arm(searchControl, c.opts.Debounce, func(token Token) {
			c.do(func() { c.onDebounce(token, trimmed) })
		})
		c.refreshFlags()
	default:
		c.cancelDebounce()
		c.refreshFlags()
	}
}

func (c *Controller) onDebounce(token Token, query string) {
	if token != c.searchToken {
		c.logger.Debug("Dropping superseded search timer for", query)
		return
	}
	c.searchToken = 0
	c.fetchSearch(query)
}

func (c *Controller) submitQuery() {
	query := strings.TrimSpace(c.state.Query)
	if query == "" {
		return
	}
	c.cancelDebounce()
	c.fetchSearch(query)
}

func (c *Controller) cancelDebounce() {
	c.sched.Cancel(searchControl)
	c.searchToken = 0
}

// clearSearch empties the query and drops any pending or in-flight search.
func (c *Controller) clearSearch() {
	s := &c.state
	c.cancelDebounce()
	c.fences.invalidate(familySearch)
	c.retry[familySearch] = nil
	s.Query = ""
	s.SearchResults = nil
	c.searchedQuery = ""
	c.refreshFlags()
}

func (c *Controller) selectItem(item models.Item) {
	if !item.Type.Valid() {
		item.Type = c.state.Type
	}
	c.state.WatchTarget = &item
	c.state.DetailTarget = nil
	c.effects = append(c.effects, EffectScrollTop)
}

func (c *Controller) findItem(id int) (models.Item, bool) {
	s := &c.state
	if s.Mode() == ModeSearch {
		for _, item := range s.SearchResults {
			if item.ID == id {
				return item, true
			}
		}
	}
	if s.Featured != nil && s.Featured.ID == id {
		return *s.Featured, true
	}
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return models.Item{}, false
}

// refreshFlags recomputes the loading and searching indicators.
func (c *Controller) refreshFlags() {
	s := &c.state
	s.IsLoading = c.fences.inFlight(familyListing) || c.fences.inFlight(familySearch)
	s.IsSearching = c.searchToken != 0 || c.fences.inFlight(familySearch)
}
