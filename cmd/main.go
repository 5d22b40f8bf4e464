package main

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/parkaroo/parkaroo/internal/auth"
	"github.com/parkaroo/parkaroo/internal/db"
	"github.com/parkaroo/parkaroo/internal/events"
	"github.com/parkaroo/parkaroo/internal/handlers"
	"github.com/parkaroo/parkaroo/internal/middleware"
	"github.com/parkaroo/parkaroo/internal/models"
	"github.com/parkaroo/parkaroo/internal/sweeper"
	log "github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment as-is")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	database := client.Database(db.DatabaseName())
	spotCollection := &db.MongoSpotCollection{Collection: database.Collection(db.SpotCollectionName)}
	userCollection := &db.MongoUserCollection{Collection: database.Collection(db.UserCollectionName)}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	var publisher events.Publisher = events.NopPublisher{}
	var mqttPublisher *events.MQTTPublisher
	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		mqttPublisher, err = events.NewMQTTPublisher(broker, "parkaroo-api")
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MQTT broker")
		}
		publisher = mqttPublisher
		log.WithField("broker", broker).Info("Publishing spot status events to MQTT")
	}

	authHandler := handlers.NewAuthHandler(authService, userCollection)
	spotHandler := handlers.NewSpotHandler(spotCollection)
	bookingHandler := handlers.NewBookingHandler(spotCollection, publisher)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	sweep := sweeper.New(spotCollection, publisher, os.Getenv("SWEEP_OWNER"))
	schedule := os.Getenv("SWEEP_INTERVAL")
	if schedule == "" {
		schedule = sweeper.DefaultSchedule
	}
	if err := sweep.Start(schedule); err != nil {
		log.WithError(err).Fatal("Failed to start expiry sweep")
	}
	log.WithField("schedule", schedule).Info("Expiry sweep scheduled")

	router := mux.NewRouter()
	router.Use(rateLimiter.RateLimit(100, 60))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	router.Handle("/api/auth/profile",
		authMiddleware.Authenticate(http.HandlerFunc(authHandler.GetProfile))).Methods("GET")

	router.HandleFunc("/api/parking-spots", spotHandler.List).Methods("GET")
	router.Handle("/api/parking-spots",
		authMiddleware.Authenticate(
			authMiddleware.RequireRole(models.RoleOwner)(http.HandlerFunc(spotHandler.Create)))).Methods("POST")
	router.HandleFunc("/api/parking-spots/{id}", spotHandler.Get).Methods("GET")
	router.Handle("/api/parking-spots/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(spotHandler.Update))).Methods("PUT")
	router.Handle("/api/parking-spots/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(spotHandler.Delete))).Methods("DELETE")

	router.HandleFunc("/api/book-spot", bookingHandler.Book).Methods("POST")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	serveErr := http.ListenAndServe(":"+port, router)

	// ListenAndServe only returns on failure. Stop the sweep and flush
	// MQTT before exiting so log.Fatal's os.Exit does not skip cleanup.
	sweep.Stop()
	if mqttPublisher != nil {
		mqttPublisher.Close()
	}
	log.WithError(serveErr).Fatal("HTTP server stopped")
}
