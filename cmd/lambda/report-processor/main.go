// Report processor Lambda entry point, triggered by S3 uploads.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"fico-simulator/internal/handlers"
	"fico-simulator/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger(os.Getenv("LOG_LEVEL"))
	defer utils.Sync()

	// Create handler
	handler, err := handlers.NewReportProcessorHandler(context.Background())
	if err != nil {
		utils.GetLogger().Fatal("Failed to create report processor", utils.Error(err))
	}
	defer handler.Close()

	// Start Lambda
	lambda.Start(handler.Handle)
}
