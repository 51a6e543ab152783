package main

import (
	"context"
	"errors"
	"lifeline/config"
	"lifeline/controllers"
	"lifeline/database"
	"lifeline/repositories"
	"lifeline/routes"
	"lifeline/services"
	"lifeline/websocket"
	"lifeline/workers"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	setupLogger(cfg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Redis is optional: rate limiting, geocode cache and cross-instance
	// fan-out degrade to single-instance behaviour without it.
	redisClient := config.InitRedis(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Firebase backs Firestore storage and FCM push
	var app *firebase.App
	if cfg.FirebaseEnabled() {
		var err error
		app, err = config.InitFirebase(ctx, cfg)
		if err != nil {
			logrus.Warnf("Firebase unavailable: %v", err)
		}
	}

	stores, err := openStores(ctx, cfg, app)
	if err != nil {
		logrus.Fatal("Failed to open case store: ", err)
	}
	defer stores.close()

	if n, err := database.SeedHospitals(ctx, stores.hospitals, cfg.HospitalsCSV); err != nil {
		logrus.Warnf("Hospital import failed: %v", err)
	} else if n > 0 {
		logrus.Infof("🏥 Imported %d hospitals", n)
	}

	var fcmClient *messaging.Client
	if app != nil {
		if fcmClient, err = app.Messaging(ctx); err != nil {
			logrus.Warnf("FCM unavailable: %v", err)
		}
	}

	// Services
	push := services.NewPushService(fcmClient, cfg.PushTopic)
	bus := services.NewCaseEventBus(redisClient, push)
	sender := services.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	dispatcher := services.NewNotificationDispatcher(sender, bus, cfg.SMSDefaultCountryCode, cfg.SMSRetryAttempts, cfg.SMSRetryDelay)
	geocoder := services.NewGeocodingService(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout, redisClient, cfg.GeocodeCacheTTL)
	caseService := services.NewCaseService(stores.cases, stores.profiles, geocoder, services.NewRuleClassifier(), dispatcher, bus, cfg.NotifyTimeout)
	hospitalService := services.NewHospitalService(stores.hospitals)

	svcs := &routes.Services{
		Cases:     caseService,
		Places:    services.NewPlacesService(cfg.PlacesURL, cfg.GoogleMapsAPIKey, 10*time.Second, hospitalService),
		Hospitals: hospitalService,
		Profiles:  services.NewProfileService(stores.profiles, cfg.SMSDefaultCountryCode),
		SMS:       services.NewSMSService(sender, cfg.SMSDefaultTo, cfg.SMSDefaultCountryCode),
		Symptoms:  services.NewSymptomService(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel),
	}

	// WebSocket hub: new triage viewers get the current case list, then events
	hub := websocket.NewHub(caseService.ListCases)
	go hub.Run()
	bus.AddSink(hub)
	go bus.Run(ctx)

	escalation := workers.NewEscalationWorker(caseService, redisClient, workers.EscalationWorkerConfig{
		Interval: cfg.EscalationInterval,
		After:    cfg.EscalationAfter,
	})
	if err := escalation.Start(); err != nil {
		logrus.Errorf("Failed to start escalation worker: %v", err)
	}

	router := routes.SetupRoutes(cfg, svcs, hub, redisClient, healthChecks(cfg, redisClient))

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.Info("🚀 Lifeline SOS server starting on port ", cfg.Port)
		logrus.Infof("🗄️  Case store: %s", cfg.CaseStore)
		logrus.Info("📡 Triage stream: /ws/triage")
		logrus.Info("💖 Health Check: /health")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	_ = escalation.Stop()
	hub.Shutdown()
	stop()

	// Let in-flight contact notifications finish
	done := make(chan struct{})
	go func() {
		caseService.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logrus.Warn("Shutdown timed out with notifications still in flight")
	}

	logrus.Info("✅ Server shutdown complete")
}

type storeSet struct {
	cases     repositories.CaseStore
	profiles  repositories.ProfileStore
	hospitals repositories.HospitalStore
	close     func()
}

// openStores selects the backend named by CASE_STORE.
func openStores(ctx context.Context, cfg *config.Config, app *firebase.App) (*storeSet, error) {
	switch cfg.CaseStore {
	case config.StoreFirestore:
		if app == nil {
			return nil, errors.New("firestore store requires Firebase credentials")
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		logrus.Info("✅ Connected to Firestore")
		return &storeSet{
			cases:     repositories.NewFirestoreCaseStore(client),
			profiles:  repositories.NewFirestoreProfileStore(client),
			hospitals: repositories.NewMemoryHospitalStore(),
			close:     closeFirestore(client),
		}, nil

	case config.StoreMemory:
		logrus.Warn("Using in-memory store; cases are lost on restart")
		return &storeSet{
			cases:     repositories.NewMemoryCaseStore(),
			profiles:  repositories.NewMemoryProfileStore(),
			hospitals: repositories.NewMemoryHospitalStore(),
			close:     func() {},
		}, nil

	default:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &storeSet{
			cases:     repositories.NewEmergencyRepository(db),
			profiles:  repositories.NewProfileRepository(db),
			hospitals: repositories.NewHospitalRepository(db),
			close:     func() { _ = database.Disconnect() },
		}, nil
	}
}

func closeFirestore(client *firestore.Client) func() {
	return func() {
		if err := client.Close(); err != nil {
			logrus.Errorf("Error closing Firestore client: %v", err)
		}
	}
}

func healthChecks(cfg *config.Config, redisClient *redis.Client) map[string]controllers.HealthCheck {
	checks := map[string]controllers.HealthCheck{
		"redis": nil,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if cfg.CaseStore == config.StoreMongo {
		checks["database"] = func(ctx context.Context) error {
			if !database.IsConnected(ctx) {
				return errors.New("mongodb unreachable")
			}
			return nil
		}
	}
	return checks
}

func setupLogger(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Environment == "development" {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
