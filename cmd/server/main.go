package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/udhaar-app/udhaar/internal/auth"
	"github.com/udhaar-app/udhaar/internal/middleware"
	"github.com/udhaar-app/udhaar/internal/notification"
	"github.com/udhaar-app/udhaar/internal/server"
	"github.com/udhaar-app/udhaar/internal/service"
	"github.com/udhaar-app/udhaar/internal/storage/sqlite"
	"github.com/udhaar-app/udhaar/pkg/logging"
)

const (
	defaultPort    = "8080"
	accessTokenTTL = 24 * time.Hour
	oneTimeCodeTTL = 5 * time.Minute
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments pass config through the environment.
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/udhaar.db")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	var notifier notification.Notifier = notification.LogNotifier{}
	if endpoint := os.Getenv("PUSH_ENDPOINT"); endpoint != "" {
		notifier = notification.NewPushNotifier(store, endpoint, os.Getenv("PUSH_API_KEY"))
		slog.Info("Push notifications enabled", "endpoint", endpoint)
	}

	jwtManager := auth.NewJWTManager(jwtSecret, accessTokenTTL)
	otpService := auth.NewOTPService(store, jwtManager, oneTimeCodeTTL)

	netting := service.NewNettingService(store)
	expenses := service.NewExpenseService(store, netting, notifier, service.NopReceiptStore{})
	settlements := service.NewSettlementService(store, netting, notifier)
	conversions := service.NewConversionService(store, netting)
	groups := service.NewGroupService(store, notifier)

	mux := http.NewServeMux()
	srv := server.New(expenses, settlements, conversions, groups, netting, otpService, store)
	srv.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.ResolveIdentity(jwtManager, store)(mux)
	handler = middleware.Metrics(handler)
	handler = middleware.Logging(handler)
	handler = middleware.CORS(handler)

	// h2c keeps HTTP/2 available to clients without requiring TLS in front.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%s", getEnv("PORT", defaultPort))
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
