package main

import (
	"github.com/fisker/nexforms-backend/internal/app"
	"github.com/fisker/nexforms-backend/pkg/logger"
)

func main() {
	// Initialize application
	application, err := app.Initialize("")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Start server
	app.StartServer(application.Config, application.Handlers)
}
