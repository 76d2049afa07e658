package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"pesanapp/internal/common"
	"pesanapp/internal/dbmysql"
	"pesanapp/internal/di"
	"pesanapp/internal/health"
	"pesanapp/internal/logger"
)

func main() {
	log.Println("Starting Chat Service...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	app, err := di.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := logger.Setup(app.Config); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	// Run migrations in main where they belong
	if err := app.DB.AutoMigrate(&dbmysql.Message{}, &dbmysql.User{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("✅ Database migration completed")

	router := mux.NewRouter()
	router.Use(common.LoggingMiddleware)
	app.ChatHandler.Register(router)
	app.UserHandler.Register(router)
	router.HandleFunc("/health", health.NewHandler(app.DB).Check).Methods("GET")

	addr := app.Config.Server.Host + ":" + app.Config.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Chat Service running on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Chat Service...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Chat Service stopped")
}
