package main

import (
	"github.com/joho/godotenv"

	"appraisal/internal/app/server"
)

func main() {
	// Missing .env is fine; real deployments inject the environment.
	_ = godotenv.Load()
	server.Run()
}
