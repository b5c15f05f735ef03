// Command browse drives the browsing controller against a running gateway
// and prints the resulting collection.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"reelify/internal/browse"
	"reelify/models"
)

func main() {
	_ = godotenv.Load()

	defaultGateway := os.Getenv("REELIFY_GATEWAY")
	if defaultGateway == "" {
		defaultGateway = "http://localhost:5000"
	}

	var (
		gateway   = flag.String("gateway", defaultGateway, "gateway base URL")
		kind      = flag.String("kind", "movie", "movie, tv or animation")
		mode      = flag.String("mode", "trending", "trending, nowPlaying, popular, topRated, upcoming")
		window    = flag.String("window", "day", "trending window: day or week")
		genre     = flag.String("genre", "", "genre id or name")
		provider  = flag.String("provider", "", "provider id or name")
		search    = flag.String("search", "", "search text")
		page      = flag.Int("page", 1, "page to show")
		year      = flag.Int("year", 0, "release year filter")
		country   = flag.String("country", "", "region filter (ISO 3166-1)")
		sortKey   = flag.String("sort", browse.DefaultSortKey, "sort key")
		trailer   = flag.Int64("trailer", 0, "resolve the trailer for this item id")
		reference = flag.Bool("reference", false, "print genres, providers and countries")
		asJSON    = flag.Bool("json", false, "print state as JSON")
		verbose   = flag.Bool("v", false, "log state changes")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gw := browse.NewGateway(*gateway, nil)
	ref, err := browse.NewReferenceLoader(gw, *country).Load(ctx)
	if err != nil {
		log.Printf("reference data incomplete: %v", err)
	}
	if *reference {
		printReference(ref, browse.Kind(*kind))
		return
	}

	transitions, err := plan(ref, browse.Kind(*kind), *mode, *window, *genre, *provider, *search, *year, *country, *sortKey)
	if err != nil {
		log.Fatalf("%v", err)
	}
	initial := browse.DefaultContext()
	for _, t := range transitions {
		initial = initial.Apply(t)
	}

	ctrl := browse.NewController(gw, initial)
	unsubscribe := ctrl.Subscribe(func(s browse.State) {
		slog.Debug("state", "title", s.Context.Title(), "page", s.Context.Page, "loading", s.Loading, "items", len(s.Items))
	})
	defer unsubscribe()

	ctrl.Start()
	ctrl.Wait()

	for ctrl.Context().Page < *page {
		if !ctrl.Dispatch(browse.NextPage()) {
			break
		}
		ctrl.Wait()
	}

	state := ctrl.State()
	if *trailer > 0 {
		item := models.CatalogItem{ID: *trailer}
		for _, it := range state.Items {
			if it.ID == *trailer {
				item = it
			}
		}
		ctrl.Select(item)
		key, err := ctrl.RequestTrailer(ctx)
		switch {
		case errors.Is(err, browse.ErrTrailerUnavailable):
			fmt.Println(browse.MessageTrailerUnavailable)
		case err != nil:
			log.Fatalf("trailer: %v", err)
		case strings.EqualFold(key.Site, "YouTube"):
			fmt.Printf("https://www.youtube.com/watch?v=%s\n", key.Key)
		default:
			fmt.Printf("%s (%s)\n", key.Key, key.Site)
		}
		return
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			log.Fatalf("encode: %v", err)
		}
		return
	}
	printState(state)
}

// plan turns the flags into the transitions a user would make, in order.
func plan(ref browse.Reference, kind browse.Kind, mode, window, genre, provider, search string, year int, country, sortKey string) ([]browse.Transition, error) {
	ts := []browse.Transition{browse.SetKind(kind)}

	switch {
	case strings.TrimSpace(search) != "":
		ts = append(ts, browse.SubmitSearch(search))
	case genre != "":
		g, ok := findGenre(ref.GenresFor(kind), genre)
		if !ok {
			return nil, fmt.Errorf("unknown genre %q", genre)
		}
		ts = append(ts, browse.SelectGenre(g.ID, g.Name))
	case provider != "":
		p, ok := findProvider(ref.ProvidersFor(kind), provider)
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", provider)
		}
		ts = append(ts, browse.SelectProvider(p.ID, p.Name))
	case mode == string(browse.ModeTrending):
		ts = append(ts, browse.SetWindow(browse.Window(window)))
	default:
		ts = append(ts, browse.SetMode(browse.Mode(mode)))
	}

	if year > 0 {
		ts = append(ts, browse.SetYear(year))
	}
	if country != "" {
		ts = append(ts, browse.SetCountry(country))
	}
	if sortKey != "" {
		ts = append(ts, browse.SetSortKey(sortKey))
	}
	return ts, nil
}

func findGenre(genres []models.Genre, want string) (models.Genre, bool) {
	for _, g := range genres {
		if fmt.Sprint(g.ID) == want || strings.EqualFold(g.Name, want) {
			return g, true
		}
	}
	var id int64
	if _, err := fmt.Sscan(want, &id); err == nil && id > 0 {
		return models.Genre{ID: id}, true
	}
	return models.Genre{}, false
}

func findProvider(providers []models.Provider, want string) (models.Provider, bool) {
	for _, p := range providers {
		if fmt.Sprint(p.ID) == want || strings.EqualFold(p.Name, want) {
			return p, true
		}
	}
	var id int64
	if _, err := fmt.Sscan(want, &id); err == nil && id > 0 {
		return models.Provider{ID: id}, true
	}
	return models.Provider{}, false
}

func printState(s browse.State) {
	fmt.Printf("%s (page %d of %d)\n", s.Context.Title(), s.Context.Page, s.Context.TotalPages)
	if s.Message != "" {
		fmt.Println(s.Message)
		return
	}
	if len(s.Items) == 0 {
		fmt.Println("No titles found")
		return
	}
	for _, it := range s.Items {
		year := it.Year()
		if year == "" {
			year = "----"
		}
		fmt.Printf("%8d  %s  %.1f  %s\n", it.ID, year, it.VoteAverage, it.DisplayTitle())
	}
}

func printReference(ref browse.Reference, kind browse.Kind) {
	fmt.Println("Genres:")
	for _, g := range ref.GenresFor(kind) {
		fmt.Printf("  %6d  %s\n", g.ID, g.Name)
	}
	fmt.Println("Providers:")
	for _, p := range ref.ProvidersFor(kind) {
		fmt.Printf("  %6d  %s\n", p.ID, p.Name)
	}
	fmt.Println("Countries:")
	for _, c := range ref.Countries {
		fmt.Printf("  %s  %s\n", c.Code, c.EnglishName)
	}
	if len(ref.Years) > 0 {
		fmt.Printf("Years: %d-%d\n", ref.Years[len(ref.Years)-1], ref.Years[0])
	}
}
