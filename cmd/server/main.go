// @title           Chmura Plików API
// @version         1.0
// @description     Backend dysku w chmurze: drzewo plików i folderów, gwiazdki, kosz, limity miejsca.
// @host            localhost
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"

	"chmura-plikow/internal/api"
	"chmura-plikow/internal/cleanup"
	"chmura-plikow/internal/config"
	"chmura-plikow/internal/database"
	"chmura-plikow/internal/storage"
	"chmura-plikow/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "chmura-plikow/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	// Brak pliku .env to nie błąd, w kontenerze zmienne przychodzą z zewnątrz.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Nie można wczytać konfiguracji: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := pgxpool.New(ctx, cfg.DB.Source)
	if err != nil {
		log.Fatalf("Nie można połączyć się z bazą danych: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(ctx); err != nil {
		log.Fatalf("Nie można pingować bazy danych: %v", err)
	}
	log.Println("Pomyślnie połączono z bazą danych")

	objects, err := buildObjectStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Nie można zainicjować magazynu plików: %v", err)
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(dbpool)
	server := api.NewServer(cfg, store, objects, wsHub)

	reaper := cleanup.NewReaper(store, objects, cfg.Cleanup.Interval, cfg.Cleanup.BatchSize, cfg.Cleanup.MaxAttempts)
	go reaper.Run(ctx)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(api.MetricsMiddleware)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("https://localhost/swagger/doc.json"),
	))

	r.Get("/ws", server.ServeWsHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Chmura plików działa! Dokumentacja dostępna pod /swagger/index.html"))
	})

	r.Post("/api/v1/auth/login", server.LoginHandler)
	r.Post("/api/v1/auth/refresh", server.RefreshTokenHandler)
	r.Post("/api/v1/auth/logout", server.LogoutHandler)

	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.AuthMiddleware)

		r.Get("/me", server.GetCurrentUserHandler)
		r.Get("/user/storage", server.StorageUsageHandler)

		r.Get("/files", server.ListFilesHandler)
		r.Post("/files/upload", server.UploadFileHandler)
		// Stała ścieżka musi być zarejestrowana przed trasami z {fileId}.
		r.Delete("/files/empty-trash", server.EmptyTrashHandler)
		r.Get("/files/{fileId}/download", server.DownloadFileHandler)
		r.Patch("/files/{fileId}/star", server.ToggleStarHandler)
		r.Patch("/files/{fileId}/trash", server.ToggleTrashHandler)
		r.Delete("/files/{fileId}/delete", server.DeleteFileHandler)

		r.Post("/folders", server.CreateFolderHandler)
		r.Delete("/folders/{folderId}/delete", server.DeleteFolderHandler)

		r.Get("/events", server.GetEventsHandler)

		r.Get("/sessions", server.ListSessionsHandler)
		r.Delete("/sessions/{sessionId}", server.DeleteSessionHandler)
		r.Post("/sessions/terminate_all", server.TerminateAllSessionsHandler)
	})

	log.Printf("Uruchamianie serwera na %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
}

func buildObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		log.Printf("Magazyn plików: S3 (%s, bucket %s)", cfg.Storage.S3.Endpoint, cfg.Storage.S3.Bucket)
		return storage.NewMinioStorage(ctx,
			cfg.Storage.S3.Endpoint,
			cfg.Storage.S3.AccessKey,
			cfg.Storage.S3.SecretKey,
			cfg.Storage.S3.Bucket,
			cfg.Storage.S3.UseSSL,
		)
	default:
		log.Printf("Magazyn plików: dysk lokalny (%s)", cfg.Storage.Path)
		return storage.NewLocalStorage(cfg.Storage.Path)
	}
}
