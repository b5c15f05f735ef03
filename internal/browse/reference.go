package browse

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"reelify/models"
)

// FallbackCountries is offered when the gateway country list cannot be loaded.
var FallbackCountries = []models.Country{
	{Code: "US", EnglishName: "United States"},
	{Code: "GB", EnglishName: "United Kingdom"},
	{Code: "FR", EnglishName: "France"},
	{Code: "JP", EnglishName: "Japan"},
	{Code: "KR", EnglishName: "South Korea"},
	{Code: "IN", EnglishName: "India"},
	{Code: "IT", EnglishName: "Italy"},
	{Code: "DE", EnglishName: "Germany"},
	{Code: "ES", EnglishName: "Spain"},
	{Code: "CN", EnglishName: "China"},
}

// animationGenreNames are the movie genres offered in the animation section.
var animationGenreNames = map[string]bool{"Animation": true, "Family": true, "Fantasy": true}

const firstYear = 1900

// Reference holds the lookup lists behind the filter controls.
type Reference struct {
	MovieGenres     []models.Genre
	TVGenres        []models.Genre
	AnimationGenres []models.Genre
	MovieProviders  []models.Provider
	TVProviders     []models.Provider
	Countries       []models.Country
	Years           []int
}

func (r Reference) GenresFor(k Kind) []models.Genre {
	switch k {
	case KindTV:
		return r.TVGenres
	case KindAnimation:
		return r.AnimationGenres
	}
	return r.MovieGenres
}

func (r Reference) ProvidersFor(k Kind) []models.Provider {
	if k == KindTV {
		return r.TVProviders
	}
	return r.MovieProviders
}

// ReferenceLoader fetches reference data once. Later calls return the
// first result, even when it was partial.
type ReferenceLoader struct {
	src    ReferenceSource
	region string
	now    func() time.Time

	once sync.Once
	ref  Reference
	err  error
}

// NewReferenceLoader loads providers for region ("" lets the gateway pick).
func NewReferenceLoader(src ReferenceSource, region string) *ReferenceLoader {
	return &ReferenceLoader{src: src, region: region, now: time.Now}
}

// Load returns the reference data. Lists that failed are empty except
// Countries, which falls back to FallbackCountries; err joins the failures.
func (l *ReferenceLoader) Load(ctx context.Context) (Reference, error) {
	l.once.Do(func() {
		l.ref, l.err = l.load(ctx)
	})
	return l.ref, l.err
}

func (l *ReferenceLoader) load(ctx context.Context) (Reference, error) {
	var ref Reference
	p := pool.New().WithErrors().WithContext(ctx)

	p.Go(func(ctx context.Context) error {
		genres, err := l.src.Genres(ctx, KindMovie)
		if err != nil {
			return err
		}
		ref.MovieGenres = genres
		for _, g := range genres {
			if animationGenreNames[g.Name] {
				ref.AnimationGenres = append(ref.AnimationGenres, g)
			}
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		genres, err := l.src.Genres(ctx, KindTV)
		ref.TVGenres = genres
		return err
	})
	p.Go(func(ctx context.Context) error {
		providers, err := l.src.Providers(ctx, KindMovie, l.region)
		ref.MovieProviders = providers
		return err
	})
	p.Go(func(ctx context.Context) error {
		providers, err := l.src.Providers(ctx, KindTV, l.region)
		ref.TVProviders = providers
		return err
	})
	p.Go(func(ctx context.Context) error {
		countries, err := l.src.Countries(ctx)
		if err != nil || len(countries) == 0 {
			log.Printf("[browse] country list unavailable, using built-in list: %v", err)
			ref.Countries = FallbackCountries
			return nil
		}
		ref.Countries = countries
		return nil
	})

	err := p.Wait()
	ref.Years = Years(l.now(), firstYear)
	return ref, err
}

// Years lists the selectable years from now's year down to oldest.
func Years(now time.Time, oldest int) []int {
	if oldest > now.Year() {
		return nil
	}
	years := make([]int, 0, now.Year()-oldest+1)
	for y := now.Year(); y >= oldest; y-- {
		years = append(years, y)
	}
	return years
}
