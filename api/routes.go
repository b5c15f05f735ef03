package api

import (
	"net/http"
	"net/http/pprof"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"reelify/handlers"
	"reelify/internal/metrics"
	"reelify/services/catalog"
)

// Options controls the non-API surface of the router.
type Options struct {
	// StaticDir is the built web client. Served only when non-empty.
	StaticDir string
	// EnableDebug mounts /debug/pprof for localhost callers.
	EnableDebug bool
}

// Register mounts the gateway routes onto r. Fixed path segments are
// registered before the {id} routes that would otherwise swallow them.
// API routes also accept OPTIONS, which corsMiddleware answers.
func Register(r *mux.Router, catalogHandler *handlers.CatalogHandler, healthHandler *handlers.HealthHandler, opts Options) {
	r.Use(requestIDMiddleware, loggingMiddleware, metrics.Middleware)

	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	registerMovies(api, catalogHandler)
	registerTV(api, catalogHandler)
	api.HandleFunc("/countries", catalogHandler.Countries).Methods(http.MethodGet, http.MethodOptions)

	if opts.EnableDebug {
		pprofRouter := r.PathPrefix("/debug/pprof").Subrouter()
		pprofRouter.Use(localhostOnlyMiddleware)
		pprofRouter.HandleFunc("/", pprof.Index)
		pprofRouter.HandleFunc("/cmdline", pprof.Cmdline)
		pprofRouter.HandleFunc("/profile", pprof.Profile)
		pprofRouter.HandleFunc("/symbol", pprof.Symbol)
		pprofRouter.HandleFunc("/trace", pprof.Trace)
		pprofRouter.HandleFunc("/{profile}", func(w http.ResponseWriter, req *http.Request) {
			pprof.Handler(mux.Vars(req)["profile"]).ServeHTTP(w, req)
		})
	}

	r.NotFoundHandler = notFoundHandler(opts.StaticDir)
}

func registerMovies(api *mux.Router, h *handlers.CatalogHandler) {
	m := catalog.MediaMovie
	api.HandleFunc("/movies", h.List(m, catalog.ListPopular)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/now_playing", h.List(m, catalog.ListNowPlaying)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/top_rated", h.List(m, catalog.ListTopRated)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/upcoming", h.List(m, catalog.ListUpcoming)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/trending/{window}", h.Trending(m)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/search", h.Search(m)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/genres", h.Genres(m)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/providers", h.Providers(m)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/movies/genre/{genreId}", h.ByGenre(m)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/movies/provider/{providerId}", h.ByProvider(m)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/movies/{id}", h.Details(m)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/movies/{id}/trailer", h.Trailer(m)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/movies/{id}/recommendations", h.Recommendations(m)).Methods(http.MethodGet, http.MethodOptions)
}

func registerTV(api *mux.Router, h *handlers.CatalogHandler) {
	tv := api.PathPrefix("/tv").Subrouter()
	m := catalog.MediaTV
	tv.HandleFunc("/popular", h.List(m, catalog.ListPopular)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/top_rated", h.List(m, catalog.ListTopRated)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/on_the_air", h.List(m, catalog.ListOnTheAir)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/airing_today", h.List(m, catalog.ListAiringToday)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/trending/{window}", h.Trending(m)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/search", h.Search(m)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/genres", h.Genres(m)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/providers", h.Providers(m)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/genre/{genreId}", h.ByGenre(m)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/provider/{providerId}", h.ByProvider(m)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/{id}", h.Details(m)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/{id}/trailer", h.Trailer(m)).Methods(http.MethodGet, http.MethodOptions)
	tv.HandleFunc("/{id}/recommendations", h.Recommendations(m)).Methods(http.MethodGet, http.MethodOptions)
}

var routeNotFound = []byte(`{"message":"Route not found"}` + "\n")

// notFoundHandler answers unknown API paths with JSON. When staticDir is set,
// other paths are served from it with index.html as the client-side routing fallback.
func notFoundHandler(staticDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if staticDir == "" || strings.HasPrefix(r.URL.Path, "/api/") || r.Method != http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write(routeNotFound)
			return
		}
		name := filepath.Join(staticDir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			http.ServeFile(w, r, name)
			return
		}
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	})
}
