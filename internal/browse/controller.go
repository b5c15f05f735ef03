package browse

import (
	"context"
	"errors"
	"log"
	"sync"

	"reelify/models"
)

// Messages shown inline when a load fails.
const (
	MessageLoadFailed         = "Could not load titles. Please try again."
	MessageTrailerUnavailable = "No trailer available"
	MessageTrailerFailed      = "Could not load trailer"
)

// ErrNoSelection is returned by RequestTrailer when no item is open.
var ErrNoSelection = errors.New("no item selected")

// State is a snapshot of everything the view renders.
type State struct {
	Context  Context              `json:"context"`
	Items    []models.CatalogItem `json:"items"`
	Loading  bool                 `json:"loading"`
	Message  string               `json:"message,omitempty"`
	Selected *models.CatalogItem  `json:"selected,omitempty"`
	Trailer  *models.TrailerKey   `json:"trailer,omitempty"`
	// TrailerMessage explains a missing trailer for the open item.
	TrailerMessage string `json:"trailerMessage,omitempty"`
}

// Controller owns the browsing Context. Each Dispatch that changes the
// derived request starts one fetch tagged with a version; a response is
// applied only while its version is still the latest, so the state always
// reflects the most recent context regardless of completion order.
type Controller struct {
	fetcher Fetcher

	mu      sync.Mutex
	state   State
	lastKey string
	version uint64
	cancel  context.CancelFunc
	subs    map[int]func(State)
	nextSub int

	inflight sync.WaitGroup
}

func NewController(f Fetcher, initial Context) *Controller {
	if initial.Page < 1 {
		initial.Page = 1
	}
	if initial.TotalPages < 1 {
		initial.TotalPages = 1
	}
	return &Controller{
		fetcher: f,
		state:   State{Context: initial, Items: []models.CatalogItem{}},
		subs:    make(map[int]func(State)),
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Context returns the current browsing context.
func (c *Controller) Context() Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Context
}

// Title is the heading for the current collection.
func (c *Controller) Title() string {
	return c.Context().Title()
}

// Subscribe registers fn for every state change and returns a function
// that removes it. fn runs on the goroutine that made the change.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Dispatch applies t and starts a fetch when the derived request changed
// or t is Refresh. It reports whether a fetch was started.
func (c *Controller) Dispatch(t Transition) bool {
	c.mu.Lock()
	prev := c.state.Context
	next := prev.Apply(t)
	req, err := Resolve(next)
	if err != nil {
		c.mu.Unlock()
		log.Printf("[browse] %s ignored: %v", t, err)
		return false
	}

	key := req.Key()
	if key == c.lastKey && !t.force {
		// No fetch will report the page count, so the loaded one stands.
		next.TotalPages = prev.TotalPages
		c.state.Context = next
		changed := next != prev
		snap := c.snapshotLocked()
		subs := c.subscribersLocked()
		c.mu.Unlock()
		if changed {
			notify(subs, snap)
		}
		return false
	}

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.version++
	version := c.version
	c.cancel = cancel
	c.lastKey = key
	c.state.Context = next
	c.state.Loading = true
	c.state.Message = ""
	snap := c.snapshotLocked()
	subs := c.subscribersLocked()
	c.inflight.Add(1)
	c.mu.Unlock()

	notify(subs, snap)
	go c.fetch(ctx, cancel, version, req)
	return true
}

// Start loads the collection for the initial context.
func (c *Controller) Start() bool {
	return c.Dispatch(Refresh())
}

func (c *Controller) fetch(ctx context.Context, cancel context.CancelFunc, version uint64, req Request) {
	defer c.inflight.Done()
	defer cancel()

	page, err := c.fetcher.FetchList(ctx, req)

	c.mu.Lock()
	if version != c.version {
		c.mu.Unlock()
		return
	}
	c.cancel = nil
	c.state.Loading = false
	if err != nil {
		log.Printf("[browse] load %s failed: %v", req.Key(), err)
		c.state.Items = []models.CatalogItem{}
		c.state.Message = MessageLoadFailed
	} else {
		page.Normalize()
		c.state.Items = page.Results
		c.state.Context.TotalPages = page.TotalPages
		if c.state.Context.Page > page.TotalPages {
			c.state.Context.Page = page.TotalPages
		}
		c.state.Message = ""
	}
	snap := c.snapshotLocked()
	subs := c.subscribersLocked()
	c.mu.Unlock()

	notify(subs, snap)
}

// Wait blocks until every started fetch has returned.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Select opens item in the detail view and clears any previous trailer.
func (c *Controller) Select(item models.CatalogItem) {
	c.mu.Lock()
	c.state.Selected = &item
	c.state.Trailer = nil
	c.state.TrailerMessage = ""
	snap := c.snapshotLocked()
	subs := c.subscribersLocked()
	c.mu.Unlock()
	notify(subs, snap)
}

func (c *Controller) CloseDetail() {
	c.mu.Lock()
	c.state.Selected = nil
	c.state.Trailer = nil
	c.state.TrailerMessage = ""
	snap := c.snapshotLocked()
	subs := c.subscribersLocked()
	c.mu.Unlock()
	notify(subs, snap)
}

// RequestTrailer resolves the trailer of the selected item. It returns
// ErrTrailerUnavailable when the item has none, which callers present
// differently from a failed request.
func (c *Controller) RequestTrailer(ctx context.Context) (models.TrailerKey, error) {
	c.mu.Lock()
	selected := c.state.Selected
	kind := c.state.Context.Kind
	c.mu.Unlock()
	if selected == nil {
		return models.TrailerKey{}, ErrNoSelection
	}
	switch selected.MediaType {
	case "tv":
		kind = KindTV
	case "movie":
		kind = KindMovie
	}

	key, err := c.fetcher.FetchTrailer(ctx, kind, selected.ID)

	c.mu.Lock()
	if c.state.Selected == nil || c.state.Selected.ID != selected.ID {
		c.mu.Unlock()
		return key, err
	}
	switch {
	case err == nil:
		c.state.Trailer = &key
		c.state.TrailerMessage = ""
	case errors.Is(err, ErrTrailerUnavailable):
		c.state.Trailer = nil
		c.state.TrailerMessage = MessageTrailerUnavailable
	default:
		c.state.Trailer = nil
		c.state.TrailerMessage = MessageTrailerFailed
	}
	snap := c.snapshotLocked()
	subs := c.subscribersLocked()
	c.mu.Unlock()

	notify(subs, snap)
	return key, err
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.Items = append([]models.CatalogItem(nil), c.state.Items...)
	if s.Items == nil {
		s.Items = []models.CatalogItem{}
	}
	if c.state.Selected != nil {
		item := *c.state.Selected
		s.Selected = &item
	}
	if c.state.Trailer != nil {
		key := *c.state.Trailer
		s.Trailer = &key
	}
	return s
}

func (c *Controller) subscribersLocked() []func(State) {
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), s State) {
	for _, fn := range subs {
		fn(s)
	}
}
