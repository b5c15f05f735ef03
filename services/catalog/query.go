package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// MediaType selects the movie or TV half of the upstream API.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

func (m MediaType) label() string {
	if m == MediaTV {
		return "TV shows"
	}
	return "movies"
}

// ListName is a fixed upstream collection such as popular or top_rated.
type ListName string

const (
	ListPopular     ListName = "popular"
	ListNowPlaying  ListName = "now_playing"
	ListTopRated    ListName = "top_rated"
	ListUpcoming    ListName = "upcoming"
	ListOnTheAir    ListName = "on_the_air"
	ListAiringToday ListName = "airing_today"
)

var listsByMedia = map[MediaType]map[ListName]string{
	MediaMovie: {
		ListPopular:    "popular movies",
		ListNowPlaying: "now playing movies",
		ListTopRated:   "top rated movies",
		ListUpcoming:   "upcoming movies",
	},
	MediaTV: {
		ListPopular:     "popular TV shows",
		ListTopRated:    "top rated TV shows",
		ListOnTheAir:    "on the air TV shows",
		ListAiringToday: "airing today TV shows",
	},
}

// ValidTimeWindows are the trending windows the upstream API understands.
var ValidTimeWindows = []string{"day", "week"}

func validWindow(w string) bool {
	for _, v := range ValidTimeWindows {
		if w == v {
			return true
		}
	}
	return false
}

// ListQuery holds the whitelisted caller parameters. Empty strings are
// never forwarded.
type ListQuery struct {
	Page       int
	Year       string
	Region     string
	SortBy     string
	WithGenres string
}

// ParseListQuery validates page, year and with_genres; region and sort_by
// are forwarded as given.
func ParseListQuery(v url.Values) (ListQuery, error) {
	q := ListQuery{Page: 1}

	if raw := strings.TrimSpace(v.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return ListQuery{}, invalid("Page must be a positive integer")
		}
		q.Page = page
	}
	if raw := strings.TrimSpace(v.Get("year")); raw != "" {
		if _, err := strconv.Atoi(raw); err != nil {
			return ListQuery{}, invalid("Year must be a number")
		}
		q.Year = raw
	}
	q.Region = strings.ToUpper(strings.TrimSpace(v.Get("region")))
	q.SortBy = strings.TrimSpace(v.Get("sort_by"))
	if raw := strings.TrimSpace(v.Get("with_genres")); raw != "" {
		if !validGenreList(raw) {
			return ListQuery{}, invalid("with_genres must be a list of genre ids")
		}
		q.WithGenres = raw
	}
	return q, nil
}

// validGenreList accepts upstream genre expressions: ids joined by ',' (AND) or '|' (OR).
func validGenreList(s string) bool {
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		if _, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err != nil {
			return false
		}
	}
	return strings.Trim(s, ",|") != ""
}

// ParseID validates a positive numeric path id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, invalid("Invalid id %q", raw)
	}
	return id, nil
}

type field uint8

const (
	fieldYear field = 1 << iota
	fieldRegion
	fieldSort
	fieldGenres
)

const fieldsAll = fieldYear | fieldRegion | fieldSort | fieldGenres

// values maps the query onto upstream parameter names for media. Only the
// fields in include are considered.
func (q ListQuery) values(media MediaType, include field) url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if include&fieldYear != 0 && q.Year != "" {
		if media == MediaTV {
			v.Set("first_air_date_year", q.Year)
		} else {
			v.Set("primary_release_year", q.Year)
		}
	}
	if include&fieldRegion != 0 && q.Region != "" {
		v.Set("region", q.Region)
	}
	if include&fieldSort != 0 && q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if include&fieldGenres != 0 && q.WithGenres != "" {
		v.Set("with_genres", q.WithGenres)
	}
	return v
}
