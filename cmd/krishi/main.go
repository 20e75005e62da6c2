package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "krishi",
	Short:         "Krishi marketplace server and client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)

	// Client
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(cartAddCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(orderStatusCmd)
	rootCmd.AddCommand(moderateCmd)
}
