package main

import (
	"fmt"
	"log"

	"github.com/kerem-kaynak/kolektor/internal/config"
	"github.com/kerem-kaynak/kolektor/internal/http"
	"go.uber.org/zap"
)

func main() {
	// Initialize context
	ctx, err := config.InitContext()
	if err != nil {
		log.Fatalf("Failed to initialize context: %v", err)
	}

	defer func() {
		if err := ctx.Logger.Sync(); err != nil {
			fmt.Printf("Failed to sync logger: %v\n", err)
		}
	}()

	// Stop the session janitor when the application exits
	defer ctx.Sessions.Stop()

	// Initialize HTTP service
	service := http.NewHTTPService(ctx)

	// Start the server
	if err := service.Engine().Run(":" + ctx.Port); err != nil {
		ctx.Logger.Fatal("Failed to start the server", zap.Error(err))
	}
}
