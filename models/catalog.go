package models

import "strings"

// Basic catalog structures relayed from the upstream API.

const (
	ImageBaseURL = "https://image.tmdb.org/t/p"
	PosterSize   = "w500"
	BackdropSize = "w780"
)

// CatalogItem is one movie or TV show as listed by the upstream API.
// Movies carry Title/ReleaseDate, series carry Name/FirstAirDate.
type CatalogItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	GenreIDs     []int64 `json:"genre_ids,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
}

// DisplayTitle returns the movie title, or the series name when no title is set.
func (c CatalogItem) DisplayTitle() string {
	if t := strings.TrimSpace(c.Title); t != "" {
		return t
	}
	return strings.TrimSpace(c.Name)
}

// Date returns the release date for movies or the first air date for series.
func (c CatalogItem) Date() string {
	if c.ReleaseDate != "" {
		return c.ReleaseDate
	}
	return c.FirstAirDate
}

// Year is the leading four characters of Date, or "" when unknown.
func (c CatalogItem) Year() string {
	d := c.Date()
	if len(d) < 4 {
		return ""
	}
	return d[:4]
}

func (c CatalogItem) PosterURL(size string) string {
	return imageURL(c.PosterPath, size, PosterSize)
}

func (c CatalogItem) BackdropURL(size string) string {
	return imageURL(c.BackdropPath, size, BackdropSize)
}

func imageURL(imagePath, size, fallback string) string {
	imagePath = strings.TrimSpace(imagePath)
	if imagePath == "" {
		return ""
	}
	if size == "" {
		size = fallback
	}
	if !strings.HasPrefix(imagePath, "/") {
		imagePath = "/" + imagePath
	}
	return ImageBaseURL + "/" + size + imagePath
}

// ListPage is the paginated list shape shared by every list endpoint.
type ListPage struct {
	Page         int           `json:"page"`
	Results      []CatalogItem `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// Normalize applies the client defaults: a missing results array is an
// empty collection and a missing total_pages counts as a single page.
func (p *ListPage) Normalize() {
	if p.Results == nil {
		p.Results = []CatalogItem{}
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	if p.Page < 1 {
		p.Page = 1
	}
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Provider struct {
	ID              int64  `json:"provider_id"`
	Name            string `json:"provider_name"`
	LogoPath        string `json:"logo_path,omitempty"`
	DisplayPriority int    `json:"display_priority,omitempty"`
}

// Country mirrors the upstream configuration/countries entries.
type Country struct {
	Code        string `json:"iso_3166_1"`
	EnglishName string `json:"english_name"`
	NativeName  string `json:"native_name,omitempty"`
}

// Video is a single entry of an item's video list.
type Video struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
	Size        int    `json:"size"`
}

// TrailerKey is the gateway's trailer lookup response.
type TrailerKey struct {
	Key  string `json:"key"`
	Site string `json:"site,omitempty"`
}

// ErrorResponse is the JSON body of every gateway error. Error carries the
// underlying failure and is only populated outside production.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
