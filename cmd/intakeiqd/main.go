package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/intakeiq/internal/cli"
	"github.com/cloo-solutions/intakeiq/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "intakeiqd",
		Short: "IntakeIQ daemon and CLI",
		Long:  "IntakeIQ daemon for running the document intake API server and managing organizations, API keys, and learned classification keywords",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.OrgCmd())
	rootCmd.AddCommand(admin.APIKeyCmd())
	rootCmd.AddCommand(admin.ClassifyCmd())
	rootCmd.AddCommand(admin.LearningCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
