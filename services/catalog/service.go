package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"reelify/config"
	"reelify/models"
)

// Service forwards gateway calls to the catalog API. It holds no state
// across requests beyond its settings.
type Service struct {
	client *upstreamClient

	mu            sync.RWMutex
	defaultRegion string
	trailerSite   string
}

// NewService builds a Service. httpc may be nil to use a client with the
// configured timeout.
func NewService(cfg config.UpstreamSettings, httpc *http.Client) *Service {
	s := &Service{client: newUpstreamClient(cfg, httpc)}
	s.applySettings(cfg)
	return s
}

// UpdateSettings hot-applies credential, language and lookup preferences.
func (s *Service) UpdateSettings(cfg config.UpstreamSettings) {
	s.client.configure(cfg)
	s.applySettings(cfg)
}

func (s *Service) applySettings(cfg config.UpstreamSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultRegion = strings.ToUpper(strings.TrimSpace(cfg.DefaultRegion))
	if s.defaultRegion == "" {
		s.defaultRegion = "US"
	}
	s.trailerSite = strings.TrimSpace(cfg.TrailerSite)
}

func (s *Service) region(requested string) string {
	if requested != "" {
		return requested
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultRegion
}

func (s *Service) preferredSite() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trailerSite
}

// Configured reports whether a credential is available.
func (s *Service) Configured() bool {
	return s.client.isConfigured()
}

// List returns a fixed collection (popular, top_rated, ...) for media.
func (s *Service) List(ctx context.Context, media MediaType, list ListName, q ListQuery) (json.RawMessage, error) {
	resource, ok := listsByMedia[media][list]
	if !ok {
		return nil, invalid("Unsupported list %q for %s", list, media.label())
	}
	return s.client.get(ctx, resource, q.values(media, fieldsAll), string(media), string(list))
}

// Trending returns the trending collection for window (day or week).
//
// The trending resource cannot filter by genre, so a with_genres request is
// answered from discover ordered by popularity instead.
func (s *Service) Trending(ctx context.Context, media MediaType, window string, q ListQuery) (json.RawMessage, error) {
	if !validWindow(window) {
		return nil, invalid("Time window must be 'day' or 'week'")
	}
	resource := "trending " + media.label()
	if q.WithGenres != "" {
		params := q.values(media, fieldGenres)
		params.Set("sort_by", "popularity.desc")
		return s.client.get(ctx, resource, params, "discover", string(media))
	}
	return s.client.get(ctx, resource, q.values(media, 0), "trending", string(media), window)
}

// Search runs a text query. query must be non-empty.
func (s *Service) Search(ctx context.Context, media MediaType, query string, q ListQuery) (json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("Search query 'q' is required")
	}
	params := q.values(media, fieldYear|fieldRegion)
	params.Set("query", query)
	return s.client.get(ctx, singular(media)+" search", params, "search", string(media))
}

type genreListResponse struct {
	Genres *[]models.Genre `json:"genres"`
}

// Genres returns the ordered genre list for media.
func (s *Service) Genres(ctx context.Context, media MediaType) ([]models.Genre, error) {
	resource := "genres"
	if media == MediaTV {
		resource = "TV genres"
	}
	body, err := s.client.get(ctx, resource, nil, "genre", string(media), "list")
	if err != nil {
		return nil, err
	}
	var payload genreListResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.Genres == nil {
		return nil, &UpstreamError{Message: "Unexpected genres data format", Err: err}
	}
	return *payload.Genres, nil
}

// ByGenre discovers titles in genreID. with_genres from the caller is ignored.
func (s *Service) ByGenre(ctx context.Context, media MediaType, genreID int64, q ListQuery) (json.RawMessage, error) {
	params := q.values(media, fieldYear|fieldRegion|fieldSort)
	params.Set("with_genres", strconv.FormatInt(genreID, 10))
	return s.client.get(ctx, media.label()+" by genre", params, "discover", string(media))
}

// ByProvider discovers titles streamable on providerID in the requested
// region, falling back to the default watch region.
func (s *Service) ByProvider(ctx context.Context, media MediaType, providerID int64, q ListQuery) (json.RawMessage, error) {
	params := q.values(media, fieldYear|fieldSort|fieldGenres)
	params.Set("with_watch_providers", strconv.FormatInt(providerID, 10))
	params.Set("watch_region", s.region(q.Region))
	return s.client.get(ctx, media.label()+" by provider", params, "discover", string(media))
}

// Details returns one item with credits and similar titles appended.
func (s *Service) Details(ctx context.Context, media MediaType, id int64) (json.RawMessage, error) {
	params := map[string][]string{"append_to_response": {"credits,similar"}}
	body, err := s.client.get(ctx, singular(media)+" details", params, string(media), strconv.FormatInt(id, 10))
	if err != nil {
		return nil, notFoundOn404(err, fmt.Sprintf("%s %d not found", singular(media), id))
	}
	return body, nil
}

// Recommendations returns titles recommended from id.
func (s *Service) Recommendations(ctx context.Context, media MediaType, id int64, q ListQuery) (json.RawMessage, error) {
	body, err := s.client.get(ctx, "recommended "+media.label(), q.values(media, 0), string(media), strconv.FormatInt(id, 10), "recommendations")
	if err != nil {
		return nil, notFoundOn404(err, fmt.Sprintf("%s %d not found", singular(media), id))
	}
	return body, nil
}

type videosResponse struct {
	Results []models.Video `json:"results"`
}

// Trailer resolves the playable trailer key for id. A NotFoundError is
// returned when the item has no trailer.
func (s *Service) Trailer(ctx context.Context, media MediaType, id int64) (*models.TrailerKey, error) {
	body, err := s.client.get(ctx, "trailer", nil, string(media), strconv.FormatInt(id, 10), "videos")
	if err != nil {
		return nil, notFoundOn404(err, "No trailer found")
	}
	var payload videosResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Message: "Error fetching trailer", Err: err}
	}
	video, ok := SelectTrailer(payload.Results, s.preferredSite())
	if !ok {
		return nil, &NotFoundError{Message: "No trailer found"}
	}
	return &models.TrailerKey{Key: video.Key, Site: video.Site}, nil
}

// SelectTrailer picks the first video of type Trailer on preferredSite, or
// the first Trailer on any site when none matches. Entries without a key are skipped.
func SelectTrailer(videos []models.Video, preferredSite string) (models.Video, bool) {
	var fallback *models.Video
	for i := range videos {
		v := videos[i]
		if v.Type != "Trailer" || strings.TrimSpace(v.Key) == "" {
			continue
		}
		if preferredSite == "" || strings.EqualFold(v.Site, preferredSite) {
			return v, true
		}
		if fallback == nil {
			fallback = &videos[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return models.Video{}, false
}

type providersResponse struct {
	Results json.RawMessage `json:"results"`
}

// Providers returns the streaming providers available in region.
func (s *Service) Providers(ctx context.Context, media MediaType, region string) (json.RawMessage, error) {
	params := map[string][]string{"watch_region": {s.region(strings.ToUpper(strings.TrimSpace(region)))}}
	body, err := s.client.get(ctx, "providers", params, "watch", "providers", string(media))
	if err != nil {
		return nil, err
	}
	var payload providersResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Message: "Error fetching providers", Err: err}
	}
	if len(payload.Results) == 0 || string(payload.Results) == "null" {
		return json.RawMessage("[]"), nil
	}
	return payload.Results, nil
}

// Countries relays the upstream country configuration list.
func (s *Service) Countries(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "countries", nil, "configuration", "countries")
}

func singular(media MediaType) string {
	if media == MediaTV {
		return "TV show"
	}
	return "movie"
}

func notFoundOn404(err error, message string) error {
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.Status == http.StatusNotFound {
		return &NotFoundError{Message: message}
	}
	return err
}
