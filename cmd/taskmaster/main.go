package main

import (
	"log"
	"os"

	"github.com/taskmaster/planner/cmd/taskmaster/commands"
)

// @title TaskMaster API
// @version 1.0
// @description Personal task and note planner: tasks, typed notes, dashboard projections and search

// @license.name MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
