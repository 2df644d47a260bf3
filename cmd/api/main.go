package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/diverkids/diverkids-api/internal/database"
	"github.com/diverkids/diverkids-api/internal/http/handlers"
	mw "github.com/diverkids/diverkids-api/internal/http/middleware"
	"github.com/diverkids/diverkids-api/internal/http/response"
	"github.com/diverkids/diverkids-api/internal/platform/auth"
	"github.com/diverkids/diverkids-api/internal/platform/calendar"
	"github.com/diverkids/diverkids-api/internal/platform/mailer"
	"github.com/diverkids/diverkids-api/internal/repo/postgres"
	"github.com/diverkids/diverkids-api/internal/service"
	"github.com/diverkids/diverkids-api/pkg/config"
	"github.com/diverkids/diverkids-api/pkg/events"
	"github.com/diverkids/diverkids-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	auth.SetSecret(cfg.Auth.JWTSecret)

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Event bus is optional; without NATS_URL the bus is a no-op.
	var bus events.Publisher = events.NoopBus{}
	if cfg.NATS.URL != "" {
		natsBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsBus.Close()
		bus = natsBus
	}

	var rdb *redis.Client
	if cfg.Cache.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
	}

	var emailSvc mailer.Service
	if cfg.Email.DevMode || cfg.Email.MailerSendKey == "" {
		emailSvc = mailer.NewDevMailer()
	} else {
		emailSvc = mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	var cal calendar.Service = calendar.Disabled{}
	if cfg.Calendar.Enabled {
		cal = calendar.NewGoogleCalendar(cfg.Calendar)
	}

	// Repositories
	usersRepo := postgres.NewUsersRepo(pool)
	resetRepo := postgres.NewResetRepo(pool)
	bookingsRepo := postgres.NewBookingsRepo(pool)
	costumesRepo := postgres.NewCostumesRepo(pool)
	packagesRepo := postgres.NewPackagesRepo(pool)
	eventsRepo := postgres.NewEventsRepo(pool)
	contactsRepo := postgres.NewContactsRepo(pool)

	bookingSvc := service.NewBookingService(bookingsRepo, costumesRepo, packagesRepo, usersRepo, cal, bus)

	cacheMw := mw.Cache(rdb, cfg.Cache.TTL)

	authH := handlers.NewAuthHandler(usersRepo, resetRepo, emailSvc, bus, cfg)
	bookingsH := handlers.NewBookingsHandler(bookingSvc)
	eventsH := handlers.NewEventsHandler(eventsRepo, cal, bus)
	costumesH := handlers.NewCostumesHandler(costumesRepo, cacheMw)
	packagesH := handlers.NewPackagesHandler(packagesRepo, cacheMw)
	contactsH := handlers.NewContactsHandler(contactsRepo, emailSvc, bus, cfg.Email.AdminEmail)
	statsH := &handlers.StatsHandler{
		Users:    usersRepo,
		Bookings: bookingsRepo,
		Events:   eventsRepo,
		Costumes: costumesRepo,
		Packages: packagesRepo,
		Contacts: contactsRepo,
	}

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Set before mounting so sub-routers inherit the JSON fallbacks.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Recurso no encontrado")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteError(w, http.StatusMethodNotAllowed, "Método no permitido")
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{
			"msg":     "API DiverKids",
			"version": "1.0",
			"docs":    "/api",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", authH.Routes())
		r.Mount("/bookings", bookingsH.Routes())
		r.Mount("/events", eventsH.Routes())
		r.Mount("/costumes", costumesH.Routes())
		r.Mount("/packages", packagesH.Routes())
		r.Mount("/contact", contactsH.Routes())
		r.Mount("/stats", statsH.Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting DiverKids API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
