// Package main provides the legal document simplifier server entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "legal-simplifier",
	Short: "Legal document simplifier - plain-language rewrites and Q&A for legal text",
	Long: `legal-simplifier serves an HTTP session API that extracts text from uploaded
PDF documents, rewrites it in plain language with key terms highlighted, and
answers questions about the simplified text.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "legal-simplifier version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default $CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
