package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weatherdeck",
	Short: "weatherdeck - weather lookup for your saved cities",
	Long: `weatherdeck fetches current conditions and short-term forecasts for a
selected city, lets you search for and save cities, and serves the results
over a small HTTP API.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
