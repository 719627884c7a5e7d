package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/collabrixo/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "collabrixo",
		Short: "Collabrixo API Server",
		Long:  `Collabrixo is the backend for a team collaboration board with kanban work items, meetings, a journey timeline, shared resources and a realtime feed.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
