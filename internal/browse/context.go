// Package browse holds the client-side browsing state: which collection is
// on screen, how it is filtered and which page is shown. A Controller turns
// every change of that state into exactly one gateway request and applies
// responses so that the latest state always wins.
package browse

import (
	"fmt"
	"strings"
)

// Kind is the top-level catalog section.
type Kind string

const (
	KindMovie     Kind = "movie"
	KindTV        Kind = "tv"
	KindAnimation Kind = "animation"
)

func (k Kind) valid() bool {
	return k == KindMovie || k == KindTV || k == KindAnimation
}

// Mode is the collection shown within a Kind.
type Mode string

const (
	ModeTrending   Mode = "trending"
	ModeNowPlaying Mode = "nowPlaying"
	ModePopular    Mode = "popular"
	ModeTopRated   Mode = "topRated"
	ModeUpcoming   Mode = "upcoming"
	ModeByGenre    Mode = "byGenre"
	ModeByProvider Mode = "byProvider"
	ModeSearch     Mode = "search"
)

// Window is the trending period.
type Window string

const (
	WindowDay  Window = "day"
	WindowWeek Window = "week"
)

// DefaultSortKey is the order restored by ResetFilters.
const DefaultSortKey = "popularity.desc"

// Filters narrow list modes. Zero values mean "not set".
type Filters struct {
	Year    int    `json:"year,omitempty"`
	Country string `json:"country,omitempty"`
	SortKey string `json:"sortKey"`
}

// Context is the complete browsing state. It is a value type: transitions
// return a new Context and never mutate their input.
type Context struct {
	Kind         Kind    `json:"kind"`
	Mode         Mode    `json:"mode"`
	Window       Window  `json:"window"`
	Page         int     `json:"page"`
	TotalPages   int     `json:"totalPages"`
	Filters      Filters `json:"filters"`
	GenreID      int64   `json:"genreId,omitempty"`
	GenreName    string  `json:"genreName,omitempty"`
	ProviderID   int64   `json:"providerId,omitempty"`
	ProviderName string  `json:"providerName,omitempty"`
	SearchText   string  `json:"searchText,omitempty"`
}

// DefaultContext is the state shown on first load: today's trending movies.
func DefaultContext() Context {
	return Context{
		Kind:       KindMovie,
		Mode:       ModeTrending,
		Window:     WindowDay,
		Page:       1,
		TotalPages: 1,
		Filters:    Filters{SortKey: DefaultSortKey},
	}
}

// Title renders the heading for the collection c describes.
func (c Context) Title() string {
	noun := map[Kind]string{KindMovie: "Movies", KindTV: "TV Shows", KindAnimation: "Animations"}[c.Kind]
	period := "Today"
	if c.Window == WindowWeek {
		period = "This Week"
	}

	switch c.Mode {
	case ModeTrending:
		switch c.Kind {
		case KindTV:
			return "Trending TV Shows " + period
		case KindAnimation:
			return "Trending Animation " + period
		}
		return "Trending " + period
	case ModeNowPlaying:
		switch c.Kind {
		case KindTV:
			return "Currently On Air"
		case KindAnimation:
			return "Now Playing Animations"
		}
		return "Now Playing"
	case ModePopular:
		return "Popular " + noun
	case ModeTopRated:
		if c.Kind == KindMovie {
			return "Top Rated"
		}
		return "Top Rated " + noun
	case ModeUpcoming:
		switch c.Kind {
		case KindTV:
			return "Airing Today"
		case KindAnimation:
			return "Upcoming Animations"
		}
		return "Coming Soon"
	case ModeByGenre:
		if c.GenreName != "" {
			return c.GenreName + " " + noun
		}
		return map[Kind]string{KindMovie: "Category", KindTV: "TV Category", KindAnimation: "Animation Category"}[c.Kind]
	case ModeByProvider:
		if c.ProviderName != "" {
			return c.ProviderName + " " + noun
		}
		return "Streaming " + noun
	case ModeSearch:
		prefix := map[Kind]string{KindMovie: "", KindTV: "TV ", KindAnimation: "Animation "}[c.Kind]
		return fmt.Sprintf("%sSearch Results: %q", prefix, c.SearchText)
	}
	return strings.TrimSpace(noun)
}
