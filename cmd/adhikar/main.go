package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env carries API keys in dev; absence is fine
	_ = godotenv.Load()

	var root = &cobra.Command{Use: "adhikar"}
	root.AddCommand(serveCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
