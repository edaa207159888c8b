package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/keaunie/elev8kitchens-backend/internal/cart"
	"github.com/keaunie/elev8kitchens-backend/internal/catalog"
	"github.com/keaunie/elev8kitchens-backend/internal/chat"
	"github.com/keaunie/elev8kitchens-backend/internal/checkout"
	"github.com/keaunie/elev8kitchens-backend/internal/deposit"
	"github.com/keaunie/elev8kitchens-backend/internal/deposit/publisher"
	h "github.com/keaunie/elev8kitchens-backend/internal/http"
	"github.com/keaunie/elev8kitchens-backend/internal/payment"
)

type Config struct {
	HTTPPort    string
	CatalogPath string

	RedisAddr string

	FallbackCheckoutURL string
	Currency            string

	SquareBaseURL     string
	SquareAccessToken string
	SquareLocationID  string

	DBHost        string
	DBPort        int
	DBUser        string
	DBPassword    string
	DBName        string
	MigrationsDir string

	KafkaBrokers []string

	MongoURI string
	MongoDB  string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("invalid DB_PORT: %v", err)
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		CatalogPath: getEnv("CATALOG_PATH", "data/catalog.json"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		FallbackCheckoutURL: os.Getenv("CHECKOUT_FALLBACK_URL"),
		Currency:            getEnv("CURRENCY", "USD"),

		SquareBaseURL:     os.Getenv("SQUARE_BASE_URL"),
		SquareAccessToken: os.Getenv("SQUARE_ACCESS_TOKEN"),
		SquareLocationID:  os.Getenv("SQUARE_LOCATION_ID"),

		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        dbPort,
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "storefront"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "internal/deposit/migrations"),

		KafkaBrokers: brokers,

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getEnv("MONGO_DB", "storefront"),

		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// Local development keeps credentials in .env; absence is fine.
	_ = godotenv.Load()

	cfg := loadConfig()

	catalogStore, err := catalog.NewStore(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}

	var cartStore cart.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		cartStore = cart.NewRedisStore(client)
		log.Printf("cart sessions stored in redis at %s", cfg.RedisAddr)
	} else {
		memStore := cart.NewMemoryStore()
		defer memStore.Close()
		cartStore = memStore
		log.Printf("cart sessions stored in memory (set REDIS_ADDR to persist across restarts)")
	}
	carts := cart.NewService(cartStore)

	// Square is optional: without credentials the storefront still serves
	// the catalog and carts, checkout falls back to the pre-provisioned
	// hosted link, and the payment endpoints answer 503.
	var gateway payment.Gateway
	squareCfg := payment.SquareConfig{
		BaseURL:     cfg.SquareBaseURL,
		AccessToken: cfg.SquareAccessToken,
		LocationID:  cfg.SquareLocationID,
		Timeout:     cfg.RequestTimeout,
	}
	if squareCfg.IsConfigured() {
		gateway = payment.NewBreakerGateway(payment.NewSquareGateway(squareCfg))
	} else {
		log.Printf("square credentials not set; payment endpoints disabled")
	}

	var recorder deposit.Recorder = deposit.NopRecorder{}
	if cfg.DBHost != "" {
		creds := &deposit.Credentials{
			Host:              cfg.DBHost,
			Port:              cfg.DBPort,
			User:              cfg.DBUser,
			Password:          cfg.DBPassword,
			DBName:            cfg.DBName,
			MigrationsDirPath: cfg.MigrationsDir,
		}
		repo, err := deposit.NewPostgresRepository(creds)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer repo.Close()
		if err := repo.RunMigrations(creds); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		recorder = repo

		if len(cfg.KafkaBrokers) > 0 {
			poller := publisher.NewOutboxPoller(repo, cfg.KafkaBrokers...)
			defer poller.Close()
			pollerCtx, cancelPoller := context.WithCancel(context.Background())
			defer cancelPoller()
			go poller.Run(pollerCtx)
			log.Printf("outbox poller publishing to %v", cfg.KafkaBrokers)
		}
	} else {
		log.Printf("DB_HOST not set; settled charges will not be recorded")
	}

	var deposits *deposit.Service
	var links checkout.LinkCreator
	if gateway != nil {
		deposits = deposit.NewService(gateway, recorder)
		links = gateway
	}

	hydrator := checkout.NewHydrator(catalogStore)
	checkoutRouter := checkout.NewRouter(hydrator, links, cfg.FallbackCheckoutURL, cfg.Currency)

	productHandler := h.NewProductHandler(catalogStore)
	cartHandler := h.NewCartHandler(carts, catalogStore)
	checkoutHandler := h.NewCheckoutHandler(carts, checkoutRouter)
	paymentHandler := h.NewPaymentHandler(deposits)

	var chatHandler *h.ChatHandler
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := chat.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to mongodb: %v", err)
		}
		transcripts := chat.NewMongoRepository(db)
		if err := transcripts.CreateIndexes(context.Background()); err != nil {
			log.Printf("failed to create chat indexes: %v", err)
		}
		chatHandler = h.NewChatHandler(transcripts)
	}

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.CORSMiddleware)
	r.Use(h.CartSessionMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{handle}", productHandler.GetProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{sku}", cartHandler.UpdateQuantity)
			r.Delete("/items/{sku}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Checkout)

		if chatHandler != nil {
			r.Route("/chat/{session}/messages", func(r chi.Router) {
				r.Get("/", chatHandler.History)
				r.Post("/", chatHandler.PostMessage)
			})
		}
	})

	// The payment endpoints keep their original function-style paths and
	// route OPTIONS/POST/405 themselves.
	r.HandleFunc("/create-deposits", paymentHandler.CreateDeposits)
	r.HandleFunc("/charge-remaining", paymentHandler.ChargeRemaining)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
