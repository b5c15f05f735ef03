package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKinds = []Kind{KindMovie, KindTV, KindAnimation}

var allModes = []Mode{ModeTrending, ModeNowPlaying, ModePopular, ModeTopRated, ModeUpcoming, ModeByGenre, ModeByProvider, ModeSearch}

func contextFor(kind Kind, mode Mode) Context {
	c := DefaultContext()
	c.Kind = kind
	c.Mode = mode
	switch mode {
	case ModeByGenre:
		c.GenreID = 28
	case ModeByProvider:
		c.ProviderID = 8
	case ModeSearch:
		c.SearchText = "night"
	}
	return c
}

func TestResolveNeverEmitsEmptyValues(t *testing.T) {
	filterSets := []Filters{
		{},
		{SortKey: DefaultSortKey},
		{Year: 1999},
		{Country: "FR", SortKey: "vote_average.desc"},
		{Year: 2020, Country: "JP", SortKey: DefaultSortKey},
	}
	for _, kind := range allKinds {
		for _, mode := range allModes {
			for _, filters := range filterSets {
				c := contextFor(kind, mode)
				c.Filters = filters
				req, err := Resolve(c)
				require.NoError(t, err, "%s/%s", kind, mode)
				assert.NotEmpty(t, req.Path)
				assert.Equal(t, "1", req.Query.Get("page"))
				for key, values := range req.Query {
					for _, v := range values {
						assert.NotEmpty(t, v, "%s/%s emitted empty %s", kind, mode, key)
					}
				}
				assert.NotContains(t, req.Query, "api_key")
			}
		}
	}
}

func TestResolvePaths(t *testing.T) {
	cases := []struct {
		kind Kind
		mode Mode
		path string
	}{
		{KindMovie, ModeTrending, "/api/trending/day"},
		{KindMovie, ModeNowPlaying, "/api/now_playing"},
		{KindMovie, ModePopular, "/api/movies"},
		{KindMovie, ModeTopRated, "/api/top_rated"},
		{KindMovie, ModeUpcoming, "/api/upcoming"},
		{KindMovie, ModeByGenre, "/api/movies/genre/28"},
		{KindMovie, ModeByProvider, "/api/movies/provider/8"},
		{KindMovie, ModeSearch, "/api/search"},
		{KindTV, ModeTrending, "/api/tv/trending/day"},
		{KindTV, ModeNowPlaying, "/api/tv/on_the_air"},
		{KindTV, ModePopular, "/api/tv/popular"},
		{KindTV, ModeTopRated, "/api/tv/top_rated"},
		{KindTV, ModeUpcoming, "/api/tv/airing_today"},
		{KindTV, ModeByGenre, "/api/tv/genre/28"},
		{KindTV, ModeByProvider, "/api/tv/provider/8"},
		{KindTV, ModeSearch, "/api/tv/search"},
		{KindAnimation, ModeTrending, "/api/trending/day"},
		{KindAnimation, ModePopular, "/api/movies"},
		{KindAnimation, ModeByGenre, "/api/movies/genre/28"},
	}
	for _, tc := range cases {
		req, err := Resolve(contextFor(tc.kind, tc.mode))
		require.NoError(t, err)
		assert.Equal(t, tc.path, req.Path, "%s/%s", tc.kind, tc.mode)
	}
}

func TestResolveAnimationAddsGenre(t *testing.T) {
	for _, mode := range allModes {
		req, err := Resolve(contextFor(KindAnimation, mode))
		require.NoError(t, err)
		switch mode {
		case ModeByGenre, ModeSearch:
			assert.Empty(t, req.Query.Get("with_genres"), mode)
		default:
			assert.Equal(t, "16", req.Query.Get("with_genres"), mode)
		}
	}

	req, err := Resolve(contextFor(KindMovie, ModePopular))
	require.NoError(t, err)
	assert.Empty(t, req.Query.Get("with_genres"))
}

func TestResolveFilters(t *testing.T) {
	c := contextFor(KindTV, ModePopular)
	c.Page = 4
	c.Filters = Filters{Year: 2008, Country: "GB", SortKey: "vote_average.desc"}

	req, err := Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, "/api/tv/popular?page=4&region=GB&sort_by=vote_average.desc&year=2008", req.Key())
	assert.Equal(t, "http://localhost:5000/api/tv/popular?page=4&region=GB&sort_by=vote_average.desc&year=2008", req.URL("http://localhost:5000/"))

	search := contextFor(KindMovie, ModeSearch)
	search.Filters = c.Filters
	req, err = Resolve(search)
	require.NoError(t, err)
	assert.Equal(t, "night", req.Query.Get("q"))
	assert.Empty(t, req.Query.Get("sort_by"))
}

func TestResolveRejectsIncompleteContexts(t *testing.T) {
	bad := []Context{
		{Kind: "music", Mode: ModePopular},
		{Kind: KindMovie, Mode: ModeByGenre},
		{Kind: KindMovie, Mode: ModeByProvider},
		{Kind: KindMovie, Mode: ModeSearch},
		{Kind: KindMovie, Mode: ModeTrending, Window: "month"},
		{Kind: KindMovie, Mode: "favourites"},
	}
	for _, c := range bad {
		_, err := Resolve(c)
		assert.ErrorIs(t, err, ErrUnresolvable, "%+v", c)
	}
}
