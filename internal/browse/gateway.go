package browse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelify/models"
)

// ErrTrailerUnavailable means the item has no trailer. It is not a failure
// and is shown as "unavailable".
var ErrTrailerUnavailable = errors.New("trailer unavailable")

// GatewayError is a non-2xx answer from the gateway.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway responded %d", e.Status)
	}
	return fmt.Sprintf("gateway responded %d: %s", e.Status, e.Message)
}

// Fetcher loads collections and trailers for the Controller.
type Fetcher interface {
	FetchList(ctx context.Context, req Request) (models.ListPage, error)
	FetchTrailer(ctx context.Context, kind Kind, id int64) (models.TrailerKey, error)
}

// ReferenceSource loads the lookup lists behind the filter controls.
type ReferenceSource interface {
	Genres(ctx context.Context, kind Kind) ([]models.Genre, error)
	Providers(ctx context.Context, kind Kind, region string) ([]models.Provider, error)
	Countries(ctx context.Context) ([]models.Country, error)
}

// Gateway talks to the proxy gateway over HTTP. It has no credential.
type Gateway struct {
	baseURL string
	httpc   *http.Client
}

var (
	_ Fetcher         = (*Gateway)(nil)
	_ ReferenceSource = (*Gateway)(nil)
)

func NewGateway(baseURL string, httpc *http.Client) *Gateway {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Gateway{baseURL: strings.TrimRight(baseURL, "/"), httpc: httpc}
}

func (g *Gateway) FetchList(ctx context.Context, req Request) (models.ListPage, error) {
	var page models.ListPage
	if err := g.getJSON(ctx, req, &page); err != nil {
		return models.ListPage{}, err
	}
	page.Normalize()
	return page, nil
}

func (g *Gateway) FetchTrailer(ctx context.Context, kind Kind, id int64) (models.TrailerKey, error) {
	path := "/api/movies/" + strconv.FormatInt(id, 10) + "/trailer"
	if kind == KindTV {
		path = "/api/tv/" + strconv.FormatInt(id, 10) + "/trailer"
	}
	var key models.TrailerKey
	err := g.getJSON(ctx, Request{Path: path}, &key)
	var ge *GatewayError
	if errors.As(err, &ge) && ge.Status == http.StatusNotFound {
		return models.TrailerKey{}, ErrTrailerUnavailable
	}
	if err != nil {
		return models.TrailerKey{}, err
	}
	if key.Key == "" {
		return models.TrailerKey{}, ErrTrailerUnavailable
	}
	return key, nil
}

// Genres loads the genre list. Animation uses the movie genres.
func (g *Gateway) Genres(ctx context.Context, kind Kind) ([]models.Genre, error) {
	path := "/api/genres"
	if kind == KindTV {
		path = "/api/tv/genres"
	}
	var genres []models.Genre
	if err := g.getJSON(ctx, Request{Path: path}, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

func (g *Gateway) Providers(ctx context.Context, kind Kind, region string) ([]models.Provider, error) {
	path := "/api/providers"
	if kind == KindTV {
		path = "/api/tv/providers"
	}
	q := url.Values{}
	if region != "" {
		q.Set("region", region)
	}
	var providers []models.Provider
	if err := g.getJSON(ctx, Request{Path: path, Query: q}, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

func (g *Gateway) Countries(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	if err := g.getJSON(ctx, Request{Path: "/api/countries"}, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

func (g *Gateway) getJSON(ctx context.Context, r Request, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL(g.baseURL), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body models.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
		return &GatewayError{Status: resp.StatusCode, Message: body.Message}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", r.Path, err)
	}
	return nil
}
