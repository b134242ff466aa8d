package main

import (
	"os"

	"multipark/backoffice/internal/logging"
)

// @title Multipark Back-office API
// @version 1.0
// @description Reservation sync between the legacy document store and the relational stores.
// @BasePath /
func main() {
	defer logging.Close()

	if err := rootCmd.Execute(); err != nil {
		logging.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
