// Score estimate Lambda entry point
package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"fico-simulator/internal/handlers"
	"fico-simulator/internal/utils"
)

func main() {
	_ = utils.InitLogger(os.Getenv("LOG_LEVEL"))
	defer utils.Sync()

	lambda.Start(handlers.NewScoreHandler().Handle)
}
