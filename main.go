package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"refseeder/cmd"
)

func main() {
	// Best effort: a missing .env just means config comes from file and environment.
	_ = godotenv.Load()

	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
