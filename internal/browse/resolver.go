package browse

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// AnimationGenreID is the upstream genre id for animation. Animation is the
// movie catalog narrowed to it.
const AnimationGenreID = 16

// Request is a gateway call derived from a Context. It never carries the
// upstream credential; the gateway adds it.
type Request struct {
	Path  string
	Query url.Values
}

// Key identifies the request for change detection.
func (r Request) Key() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// URL joins the request onto the gateway base URL.
func (r Request) URL(base string) string {
	u := strings.TrimRight(base, "/") + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

var ErrUnresolvable = errors.New("browse: context does not describe a collection")

type params uint8

const (
	withYear params = 1 << iota
	withRegion
	withSort
	withGenres
)

// Resolve maps a Context onto the one gateway request that shows it.
// Parameters with empty values are never emitted.
func Resolve(c Context) (Request, error) {
	if !c.Kind.valid() {
		return Request{}, fmt.Errorf("%w: kind %q", ErrUnresolvable, c.Kind)
	}
	prefix := "/api"
	if c.Kind == KindTV {
		prefix = "/api/tv"
	}

	var (
		path    string
		include params
	)
	lists := withYear | withRegion | withSort | withGenres
	switch c.Mode {
	case ModeTrending:
		if c.Window != WindowDay && c.Window != WindowWeek {
			return Request{}, fmt.Errorf("%w: window %q", ErrUnresolvable, c.Window)
		}
		path, include = prefix+"/trending/"+string(c.Window), withGenres
	case ModeNowPlaying:
		path, include = listPath(c.Kind, "/api/now_playing", "/api/tv/on_the_air"), lists
	case ModePopular:
		path, include = listPath(c.Kind, "/api/movies", "/api/tv/popular"), lists
	case ModeTopRated:
		path, include = prefix+"/top_rated", lists
	case ModeUpcoming:
		path, include = listPath(c.Kind, "/api/upcoming", "/api/tv/airing_today"), lists
	case ModeByGenre:
		if c.GenreID <= 0 {
			return Request{}, fmt.Errorf("%w: no genre selected", ErrUnresolvable)
		}
		path = listPath(c.Kind, "/api/movies/genre/", "/api/tv/genre/") + strconv.FormatInt(c.GenreID, 10)
		include = withYear | withRegion | withSort
	case ModeByProvider:
		if c.ProviderID <= 0 {
			return Request{}, fmt.Errorf("%w: no provider selected", ErrUnresolvable)
		}
		path = listPath(c.Kind, "/api/movies/provider/", "/api/tv/provider/") + strconv.FormatInt(c.ProviderID, 10)
		include = lists
	case ModeSearch:
		if c.SearchText == "" {
			return Request{}, fmt.Errorf("%w: empty search", ErrUnresolvable)
		}
		path, include = prefix+"/search", withYear|withRegion
	default:
		return Request{}, fmt.Errorf("%w: mode %q", ErrUnresolvable, c.Mode)
	}

	q := url.Values{}
	page := c.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	if c.Mode == ModeSearch {
		q.Set("q", c.SearchText)
	}
	if include&withYear != 0 && c.Filters.Year > 0 {
		q.Set("year", strconv.Itoa(c.Filters.Year))
	}
	if include&withRegion != 0 && c.Filters.Country != "" {
		q.Set("region", c.Filters.Country)
	}
	if include&withSort != 0 && c.Filters.SortKey != "" {
		q.Set("sort_by", c.Filters.SortKey)
	}
	if include&withGenres != 0 && c.Kind == KindAnimation {
		q.Set("with_genres", strconv.Itoa(AnimationGenreID))
	}
	return Request{Path: path, Query: q}, nil
}

func listPath(k Kind, movie, tv string) string {
	if k == KindTV {
		return tv
	}
	return movie
}
