// Command authcore-go runs the credential authentication and session
// management service: account registration and login with bcrypt-hashed
// passwords, a signed session token carried in an HTTP-only cookie, and the
// identity-scoped profile operations behind the auth gate.
//
// @title Authcore API
// @version 1.0
// @description Credential-based authentication and session management.
// @BasePath /
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/authcore-go/apperror"
	"github.com/user/authcore-go/auth"
	"github.com/user/authcore-go/config"
	"github.com/user/authcore-go/db"
	_ "github.com/user/authcore-go/docs" // generated swagger spec
	"github.com/user/authcore-go/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Wire the auth components once at startup; the secret and cookie policy
	// travel inside these values, never through globals.
	store := auth.NewPostgresUserStore(pool)
	hasher := auth.NewPasswordHasher()
	codec := auth.NewTokenCodec(*cfg.Auth)
	sessionCookie := auth.NewSessionCookie(*cfg.Auth)
	validator := auth.NewValidator()

	authService := auth.NewService(store, hasher, codec)
	authHandlers := auth.NewHandlers(authService, validator, sessionCookie)

	userService := users.NewService(store)
	userHandlers := users.NewHandlers(userService, validator, sessionCookie)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Service description at the root, in place of a health page.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"service": "authcore",
			"routes": map[string]string{
				"register": "POST /register",
				"login":    "POST /login",
				"me":       "GET /me",
			},
		})
	})

	// Anonymous paths.
	r.Post("/register", authHandlers.HandleRegister())
	r.Post("/login", authHandlers.HandleLogin())

	// Everything below passes the auth gate first.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(codec, store, sessionCookie))

		r.Get("/logout", authHandlers.HandleLogout())
		r.Get("/me", userHandlers.HandleGetMe())
		r.Put("/update", userHandlers.HandleUpdate())
		r.Delete("/delete", userHandlers.HandleDelete())
	})

	// JSON 404 for unknown paths.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, apperror.ErrorResponse{Error: "route not found"})
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s (env: %s)", addr, cfg.Auth.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	log.Println("server stopped gracefully")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}
