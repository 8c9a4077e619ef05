package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/spigell/profile-scout/cmd"
)

func main() {
	// API keys may come from a .env file in the working directory.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
