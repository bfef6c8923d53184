package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"artfetch/api"
	"artfetch/config"
	"artfetch/handlers"
	"artfetch/services/artwork"
	"artfetch/services/catalog"
	"artfetch/services/preload"
	"artfetch/services/startup"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.Log)

	httpc := &http.Client{Timeout: 15 * time.Second}

	var tmdb *artwork.Client
	if cfg.TMDB.APIKey != "" {
		tmdb = artwork.NewClient(cfg.TMDB.APIKey, httpc)
	} else {
		log.Printf("[main] no TMDB API key configured, artwork lookups disabled")
	}

	backdrops := artwork.NewBackdropRepository(tmdb)
	logos := artwork.NewLogoRepository(tmdb, cfg.TMDB.LogoLanguage)
	fallback := artwork.NewFallbackRepository(tmdb)

	feed := catalog.NewService(catalog.NewClient(cfg.Feed.Endpoint, httpc), fallback)

	warmer := preload.NewImageWarmer(httpc)
	preloader := preload.NewPreloader(backdrops, logos, warmer, cfg.Preload.ResolveTimeout)
	homeCache := startup.NewCache()

	artworkHandler := handlers.NewArtworkHandler(backdrops, logos)
	catalogHandler := handlers.NewCatalogHandler(feed, homeCache, preloader, cfg.Preload.Sizes)

	limiter := api.NewClientRateLimiter(rate.Limit(2), 5)

	r := mux.NewRouter()
	apiR := r.PathPrefix("/api").Subrouter()
	apiR.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	apiR.HandleFunc("/home", catalogHandler.GetHome).Methods(http.MethodGet)
	apiR.HandleFunc("/details/{id}", catalogHandler.GetDetails).Methods(http.MethodGet)
	apiR.HandleFunc("/search", catalogHandler.Search).Methods(http.MethodGet)
	apiR.HandleFunc("/artwork/backdrop/{id}", artworkHandler.GetBackdrop).Methods(http.MethodGet)
	apiR.HandleFunc("/artwork/logo/{id}", artworkHandler.GetLogo).Methods(http.MethodGet)
	apiR.Handle("/artwork/prefetch", api.RateLimit(limiter, http.HandlerFunc(artworkHandler.Prefetch))).Methods(http.MethodPost)
	apiR.Handle("/preload", api.RateLimit(limiter, http.HandlerFunc(catalogHandler.Preload))).Methods(http.MethodPost)
	apiR.Handle("/preload/neighborhood", api.RateLimit(limiter, http.HandlerFunc(catalogHandler.PreloadNeighborhood))).Methods(http.MethodPost)

	handler := api.RequestID(api.AccessLog(api.CORS(r)))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Warm the home feed and its artwork in the background so the first
	// client request lands on a populated cache.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		home := catalogHandler.FetchHome(ctx)
		homeCache.Set(home)
		preloader.PreloadHome(ctx, home, cfg.Preload.Sizes)
		log.Printf("[main] startup preload finished")
	}()

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}

func setupLogging(cfg config.LogConfig) {
	log.SetFlags(log.LstdFlags)
	if cfg.File == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
