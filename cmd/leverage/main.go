package main

import (
	"os"

	"github.com/wonny/leverage/backend/cmd/leverage/commands"
)

// main is the entry point for the leverage CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/leverage [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
