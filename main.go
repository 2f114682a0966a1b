package main

import (
	"clementus360/mindset/app"
	"clementus360/mindset/config"
	"clementus360/mindset/handlers"
	"clementus360/mindset/middleware"
	"clementus360/mindset/routes"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {

	config.LoadEnv()
	config.InitLogger()

	settings, err := config.Load()
	if err != nil {
		config.Logger.Fatal("Invalid configuration: ", err)
	}
	config.SetLevel(settings.LogLevel)

	a, err := app.New(settings)
	if err != nil {
		config.Logger.Fatal("Failed to start app: ", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), settings.RemoteTimeout)
	status := a.Start(startCtx)
	cancel()
	config.Logger.WithField("signed_in", status.SignedIn).Info("Session restored")

	mux := http.NewServeMux()
	routes.RegisterAllRoutes(mux, handlers.New(a))

	handler := middleware.Chain(
		middleware.RecoverMiddleware,
		middleware.LoggingMiddleware,
		middleware.CORS(settings.AllowedOrigin),
	)(mux)

	server := &http.Server{
		Addr:              settings.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		config.Logger.Info("Server is running on ", settings.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Fatal("Server failed: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	config.Logger.Info("Shutting down")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctx); err != nil {
		config.Logger.Warn("Server shutdown: ", err)
	}
	// Waits for pending remote writes before the store closes.
	if err := a.Close(); err != nil {
		config.Logger.Error("Failed to close app: ", err)
	}
}
