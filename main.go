package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sadopc/wintrackr/internal/cli"
)

func main() {
	// A .env file in the working directory may carry WINTRACKR_* settings.
	_ = godotenv.Load()

	if err := cli.NewRootCmd(&cli.App{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
