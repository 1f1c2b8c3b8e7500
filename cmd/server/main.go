package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"

	"github.com/czaja307/TravelPlanner-backend/internal/adapters/lock"
	"github.com/czaja307/TravelPlanner-backend/internal/adapters/optimization"
	"github.com/czaja307/TravelPlanner-backend/internal/adapters/repositories"
	"github.com/czaja307/TravelPlanner-backend/internal/api"
	"github.com/czaja307/TravelPlanner-backend/internal/config"
	"github.com/czaja307/TravelPlanner-backend/internal/platform/db"
	"github.com/czaja307/TravelPlanner-backend/internal/ports"
	"github.com/czaja307/TravelPlanner-backend/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, ORS) behind ports and starts
// the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	port := config.Get("PORT", "8080")

	database, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := repositories.InitSchema(database); err != nil {
		log.Fatal(err)
	}

	optimizer, err := optimization.NewORSOptimizer(optimization.ORSConfig{
		APIKey:         orsKey,
		BaseURL:        config.Get("ORS_BASE_URL", ""),
		Timeout:        config.GetDuration("ORS_TIMEOUT", 30*time.Second),
		CallsPerMinute: config.GetInt("ORS_CALLS_PER_MINUTE", 40),
	})
	if err != nil {
		log.Fatal(err)
	}

	// With a single instance the in-process locker suffices; REDIS_URL
	// switches to a distributed lock so replicas serialize runs per
	// itinerary too.
	var locker ports.ItineraryLocker = lock.NewMemoryLocker()
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal(err)
		}
		locker = lock.NewRedisLocker(redis.NewClient(opt), config.GetDuration("LOCK_TTL", 2*time.Minute))
		log.Println("Using Redis itinerary locks")
	}

	repo := repositories.NewPostgresTripRepository(database)
	store := repositories.NewPostgresScheduleStore(database)

	planner := services.NewPlanner(repo, optimizer, store, locker, services.PlannerConfig{
		MaxSlotsPerBatch: config.GetInt("MAX_SLOTS_PER_BATCH", 3),
		OracleTimeout:    config.GetDuration("ORACLE_TIMEOUT", 45*time.Second),
	})

	router := api.NewRouter(planner, repo)

	// Timeouts are tuned for multi-segment optimization runs (external
	// solver latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
