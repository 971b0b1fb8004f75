package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"gameday/backend/internal/api/handler"
	"gameday/backend/internal/config"
	"gameday/backend/internal/games"
	"gameday/backend/internal/hub"
	"gameday/backend/internal/models"
	"gameday/backend/internal/reaper"
	"gameday/backend/internal/registry"
	"gameday/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "user"),
		envOr("DB_PASSWORD", "password"),
		envOr("DB_NAME", "gamedaydb"),
		envOr("DB_PORT", "5432"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Gameday Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	db, rdb := setupDependencies()
	s := storage.NewService(db, rdb)

	reg := registry.New()
	// The lobby exists from process start.
	reg.GetOrCreateFixed(config.LobbyRoomID, config.LobbyRoomName)

	gatewayHub := hub.New(reg, s)
	sweep := reaper.New(reg, gatewayHub, config.ReapInterval)
	gamesClient := games.NewClient(envOr("GAMES_API_URL", "http://localhost:9090"))

	go gatewayHub.Run()
	go sweep.Run(context.Background())

	r := gin.Default()
	h := handler.NewHandler(gatewayHub, reg, s, gamesClient)

	r.GET("/auth/guest", h.GetGuestToken)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")
	{
		api.GET("/rooms", h.ListRooms)
		api.POST("/rooms", h.CreateRoom)
		api.GET("/rooms/:id", h.GetRoom)
		api.DELETE("/rooms/:id", h.DeleteRoom)
		api.GET("/users/:id", h.GetUser)
		api.GET("/users/:id/rooms", h.GetUserRooms)
		api.GET("/games", h.ListGames)
	}

	server := &http.Server{
		Addr:           ":" + envOr("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
