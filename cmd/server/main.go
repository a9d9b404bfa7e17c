// cmd/server/main.go
package main

import (
	"net/http"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/cardden/server/internal/auth"
	"github.com/cardden/server/internal/cache"
	"github.com/cardden/server/internal/database"
	"github.com/cardden/server/internal/handlers"
	"github.com/cardden/server/internal/middleware"
)

func main() {
	logger := logrus.New()
	if os.Getenv("CARDDEN_ENV") != "production" {
		logger.SetLevel(logrus.DebugLevel)
	}

	auth.Init()
	database.ConnectDB()

	// Action history is best effort; the server runs fine without Redis.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, action history disabled: %v", err)
		cache.Rdb = nil
	}

	srv := handlers.NewServer(logger)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(middleware.LogMiddleware(logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: func() []string {
			if os.Getenv("CARDDEN_ENV") == "production" {
				return strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",")
			}
			return []string{"https://*", "http://*"}
		}(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/user/create", handlers.CreateUserHandler)
	r.Post("/user/login", handlers.LoginHandler)
	r.Get("/leaderboard", handlers.LeaderboardHandler)
	r.Get("/ws", srv.WSHandler())

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("cardden server listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
