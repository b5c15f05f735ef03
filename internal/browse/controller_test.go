package browse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelify/models"
)

// fakeFetcher answers list requests from respond and records every call.
type fakeFetcher struct {
	mu       sync.Mutex
	requests []Request
	respond  func(context.Context, Request) (models.ListPage, error)
	trailer  func(Kind, int64) (models.TrailerKey, error)
}

func (f *fakeFetcher) FetchList(ctx context.Context, req Request) (models.ListPage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return pageOf(req.Path, 1), nil
	}
	return respond(ctx, req)
}

func (f *fakeFetcher) FetchTrailer(_ context.Context, kind Kind, id int64) (models.TrailerKey, error) {
	return f.trailer(kind, id)
}

func (f *fakeFetcher) calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

func pageOf(title string, totalPages int) models.ListPage {
	return models.ListPage{Page: 1, Results: []models.CatalogItem{{ID: 1, Title: title}}, TotalPages: totalPages}
}

func TestStartLoadsInitialContext(t *testing.T) {
	f := &fakeFetcher{}
	c := NewController(f, DefaultContext())

	require.True(t, c.Start())
	c.Wait()

	calls := f.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/trending/day?page=1", calls[0].Key())
	state := c.State()
	assert.False(t, state.Loading)
	assert.Empty(t, state.Message)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "/api/trending/day", state.Items[0].Title)
}

func TestDispatchFetchesOnlyOnChange(t *testing.T) {
	f := &fakeFetcher{}
	c := NewController(f, DefaultContext())
	c.Start()
	c.Wait()

	assert.False(t, c.Dispatch(SubmitSearch("   ")), "blank search")
	assert.False(t, c.Dispatch(PrevPage()), "prev on first page")
	assert.False(t, c.Dispatch(NextPage()), "next on last page")
	assert.False(t, c.Dispatch(SetMode(ModeTrending)), "same request")
	assert.Len(t, f.calls(), 1)
	assert.Equal(t, ModeTrending, c.Context().Mode)

	assert.True(t, c.Dispatch(Refresh()))
	c.Wait()
	assert.Len(t, f.calls(), 2)
}

func TestTotalPagesFromResponse(t *testing.T) {
	f := &fakeFetcher{respond: func(_ context.Context, req Request) (models.ListPage, error) {
		return pageOf(req.Path, 3), nil
	}}
	c := NewController(f, DefaultContext())
	c.Start()
	c.Wait()
	require.Equal(t, 3, c.Context().TotalPages)

	require.True(t, c.Dispatch(NextPage()))
	c.Wait()
	require.True(t, c.Dispatch(NextPage()))
	c.Wait()
	assert.Equal(t, 3, c.Context().Page)
	assert.False(t, c.Dispatch(NextPage()))
	assert.Equal(t, "/api/trending/day?page=3", f.calls()[2].Key())
}

func TestUnfetchedFilterChangeKeepsPageCount(t *testing.T) {
	f := &fakeFetcher{respond: func(_ context.Context, req Request) (models.ListPage, error) {
		return pageOf(req.Path, 5), nil
	}}
	c := NewController(f, DefaultContext())
	c.Start()
	c.Wait()

	assert.False(t, c.Dispatch(SetYear(2020)), "trending ignores the year filter")
	assert.Equal(t, 5, c.Context().TotalPages)
	assert.Equal(t, 2020, c.Context().Filters.Year)

	require.True(t, c.Dispatch(NextPage()))
	c.Wait()
	assert.Equal(t, 2, c.Context().Page)
	assert.Equal(t, "/api/trending/day?page=2", f.calls()[1].Key())
}

func TestShrunkPageCountClampsPage(t *testing.T) {
	var mu sync.Mutex
	total := 5
	f := &fakeFetcher{respond: func(_ context.Context, req Request) (models.ListPage, error) {
		mu.Lock()
		defer mu.Unlock()
		return pageOf(req.Path, total), nil
	}}
	initial := DefaultContext()
	initial.Page, initial.TotalPages = 5, 5
	c := NewController(f, initial)
	c.Start()
	c.Wait()
	require.Equal(t, 5, c.Context().Page)

	mu.Lock()
	total = 3
	mu.Unlock()
	require.True(t, c.Dispatch(Refresh()))
	c.Wait()

	ctx := c.Context()
	assert.Equal(t, 3, ctx.TotalPages)
	assert.Equal(t, 3, ctx.Page)
}

func TestMissingTotalPagesDefaultsToOne(t *testing.T) {
	f := &fakeFetcher{respond: func(context.Context, Request) (models.ListPage, error) {
		return models.ListPage{}, nil
	}}
	c := NewController(f, DefaultContext())
	c.Start()
	c.Wait()

	state := c.State()
	assert.Equal(t, 1, state.Context.TotalPages)
	assert.NotNil(t, state.Items)
	assert.Empty(t, state.Items)
}

func TestFailureClearsItems(t *testing.T) {
	fail := false
	var mu sync.Mutex
	f := &fakeFetcher{respond: func(_ context.Context, req Request) (models.ListPage, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return models.ListPage{}, errors.New("connection refused")
		}
		return pageOf(req.Path, 2), nil
	}}
	c := NewController(f, DefaultContext())
	c.Start()
	c.Wait()
	require.Len(t, c.State().Items, 1)

	mu.Lock()
	fail = true
	mu.Unlock()
	c.Dispatch(SetMode(ModePopular))
	c.Wait()

	state := c.State()
	assert.Empty(t, state.Items)
	assert.False(t, state.Loading)
	assert.Equal(t, MessageLoadFailed, state.Message)
	assert.Equal(t, ModePopular, state.Context.Mode)
}

// gatedFetcher blocks each request until its path is released. It ignores
// cancellation so superseded responses still arrive.
type gatedFetcher struct {
	fakeFetcher
	gates map[string]chan struct{}
}

func newGatedFetcher(paths ...string) *gatedFetcher {
	g := &gatedFetcher{gates: make(map[string]chan struct{})}
	for _, p := range paths {
		g.gates[p] = make(chan struct{})
	}
	g.respond = func(_ context.Context, req Request) (models.ListPage, error) {
		<-g.gates[req.Path]
		return pageOf(req.Path, 1), nil
	}
	return g
}

func TestLastContextWins(t *testing.T) {
	const first, second = "/api/movies/genre/28", "/api/movies/genre/35"

	for _, releaseFirstLast := range []bool{true, false} {
		f := newGatedFetcher(first, second)
		c := NewController(f, DefaultContext())

		require.True(t, c.Dispatch(SelectGenre(28, "Action")))
		require.True(t, c.Dispatch(SelectGenre(35, "Comedy")))
		require.Eventually(t, func() bool { return len(f.calls()) == 2 }, time.Second, 5*time.Millisecond)

		if releaseFirstLast {
			close(f.gates[second])
			require.Eventually(t, func() bool { return !c.State().Loading }, time.Second, 5*time.Millisecond)
			close(f.gates[first])
		} else {
			close(f.gates[first])
			close(f.gates[second])
		}
		c.Wait()

		state := c.State()
		assert.False(t, state.Loading)
		require.Len(t, state.Items, 1)
		assert.Equal(t, second, state.Items[0].Title, "release first last=%v", releaseFirstLast)
		assert.Equal(t, int64(35), state.Context.GenreID)
		assert.Equal(t, "Comedy Movies", c.Title())
	}
}

func TestSupersededFetchIsCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	f := &fakeFetcher{respond: func(ctx context.Context, req Request) (models.ListPage, error) {
		if req.Path == "/api/movies" {
			<-ctx.Done()
			close(cancelled)
			return models.ListPage{}, ctx.Err()
		}
		return pageOf(req.Path, 1), nil
	}}
	c := NewController(f, DefaultContext())

	c.Dispatch(SetMode(ModePopular))
	c.Dispatch(SetMode(ModeTopRated))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}
	c.Wait()
	state := c.State()
	assert.Empty(t, state.Message)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "/api/top_rated", state.Items[0].Title)
}

func TestSubscribeSeesEveryChange(t *testing.T) {
	f := &fakeFetcher{}
	c := NewController(f, DefaultContext())

	var mu sync.Mutex
	var states []State
	unsubscribe := c.Subscribe(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	c.Start()
	c.Wait()
	unsubscribe()
	c.Dispatch(SetMode(ModePopular))
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)
}

func TestTrailerUnavailableVersusFailure(t *testing.T) {
	f := &fakeFetcher{trailer: func(kind Kind, id int64) (models.TrailerKey, error) {
		switch id {
		case 1:
			return models.TrailerKey{Key: "yt-1", Site: "YouTube"}, nil
		case 2:
			return models.TrailerKey{}, ErrTrailerUnavailable
		}
		return models.TrailerKey{}, errors.New("gateway responded 500")
	}}
	c := NewController(f, DefaultContext())

	_, err := c.RequestTrailer(context.Background())
	assert.ErrorIs(t, err, ErrNoSelection)

	c.Select(models.CatalogItem{ID: 1, Title: "Found"})
	key, err := c.RequestTrailer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "yt-1", key.Key)
	require.NotNil(t, c.State().Trailer)

	c.Select(models.CatalogItem{ID: 2, Title: "No trailer"})
	assert.Nil(t, c.State().Trailer, "selecting clears the previous trailer")
	_, err = c.RequestTrailer(context.Background())
	assert.ErrorIs(t, err, ErrTrailerUnavailable)
	assert.Equal(t, MessageTrailerUnavailable, c.State().TrailerMessage)

	c.Select(models.CatalogItem{ID: 3, Title: "Broken"})
	_, err = c.RequestTrailer(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTrailerUnavailable)
	assert.Equal(t, MessageTrailerFailed, c.State().TrailerMessage)

	c.CloseDetail()
	state := c.State()
	assert.Nil(t, state.Selected)
	assert.Empty(t, state.TrailerMessage)
}

func TestTrailerUsesItemMediaType(t *testing.T) {
	var gotKind Kind
	f := &fakeFetcher{trailer: func(kind Kind, id int64) (models.TrailerKey, error) {
		gotKind = kind
		return models.TrailerKey{Key: "k"}, nil
	}}
	c := NewController(f, DefaultContext())

	c.Select(models.CatalogItem{ID: 9, Name: "Show", MediaType: "tv"})
	_, err := c.RequestTrailer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindTV, gotKind)

	c = NewController(f, DefaultContext().Apply(SetKind(KindAnimation)))
	c.Select(models.CatalogItem{ID: 10, Title: "Cartoon"})
	_, err = c.RequestTrailer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindAnimation, gotKind)
}
