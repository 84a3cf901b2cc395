package main

import (
	"ideaforge/cmd/cmd"
	"ideaforge/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	cmd.Execute()
}
