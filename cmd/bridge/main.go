package main

import (
	"log"

	"github.com/iotdash/bridge/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ bridge failed to start: %v", err)
	}
}
