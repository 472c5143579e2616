package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/theMessiMagic/if-fashion/internal/blob"
	"github.com/theMessiMagic/if-fashion/internal/chat"
	"github.com/theMessiMagic/if-fashion/internal/config"
	"github.com/theMessiMagic/if-fashion/internal/handlers"
	"github.com/theMessiMagic/if-fashion/internal/metrics"
	"github.com/theMessiMagic/if-fashion/internal/notify"
	"github.com/theMessiMagic/if-fashion/internal/store"
	"github.com/theMessiMagic/if-fashion/internal/upload"
	"github.com/theMessiMagic/if-fashion/web"
)

func main() {
	// Configure slog to output DEBUG level messages
	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// 2. Record store
	db, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreLocation())
	if err != nil {
		slog.Error("Failed to initialize store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Init(ctx); err != nil {
		slog.Error("Failed to initialize collections", "error", err)
		os.Exit(1)
	}

	// 3. Blob store for uploads and galleries
	blobs, err := blob.Open(ctx, blob.Config{
		Driver: cfg.BlobDriver,
		Root:   cfg.BlobRoot,
		S3: blob.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		},
	})
	if err != nil {
		slog.Error("Failed to initialize blob store", "driver", cfg.BlobDriver, "error", err)
		os.Exit(1)
	}
	uploads := &upload.Uploader{Blobs: blobs, MaxWidth: cfg.ImageMaxWidth}

	// 4. Chat assistant
	assistant := &chat.Assistant{Tickets: db, Timeout: cfg.ChatTimeout}
	if cfg.GeminiAPIKey != "" {
		gen, err := chat.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("Failed to create Gemini client, chat will go to the admin", "error", err)
		} else {
			assistant.Generator = gen
		}
	} else {
		slog.Warn("GEMINI_API_KEY not set. Every chat question will become a ticket.")
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			slog.Error("Failed to create Telegram notifier", "error", err)
		} else {
			assistant.Notifier = tg
		}
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// 5. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 6. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load(web.Templates, "templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		slog.Error("Failed to open static files", "error", err)
		os.Exit(1)
	}

	// 7. Setup Handlers
	mux := handlers.NewRouter(handlers.Router{
		Public: &handlers.PublicHandler{
			Uploads:      uploads,
			Templates:    templates,
			SessionStore: sessionStore,
		},
		Submissions: &handlers.SubmissionHandler{
			Store:          db,
			Uploads:        uploads,
			Templates:      templates,
			SessionStore:   sessionStore,
			Metrics:        m,
			MaxUploadBytes: cfg.UploadMaxBytes,
		},
		Admin: &handlers.AdminHandler{
			Store:          db,
			Uploads:        uploads,
			SessionStore:   sessionStore,
			Templates:      templates,
			Metrics:        m,
			MaxUploadBytes: cfg.UploadMaxBytes,
		},
		Chat: &handlers.ChatHandler{
			Assistant:    assistant,
			Store:        db,
			SessionStore: sessionStore,
			Metrics:      m,
		},
		RateLimiter: handlers.NewRateLimiter(cfg.SubmitRateWindow),
		Static:      static,
		Metrics:     m,
	})

	// 8. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		// Trust local development origins
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	protected := CSRF(mux)
	if !cfg.CookieSecure {
		// Served over plain HTTP (local development), skip the TLS referer check.
		next := protected
		protected = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}

	// Chain: Logger -> Metrics -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.MetricsMiddleware(m)(
			handlers.SecurityHeadersMiddleware(protected),
		),
	)

	// 9. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "store", cfg.StoreDriver, "blobs", blobs.Driver())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
