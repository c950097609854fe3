package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"weatherdeck/internal/citystore"
	"weatherdeck/internal/config"
	"weatherdeck/internal/kvstore"
)

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List the saved cities",
	RunE:  runCities,
}

func init() {
	rootCmd.AddCommand(citiesCmd)
}

func runCities(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	kv, err := kvstore.NewSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	store := citystore.New(kv)
	for _, city := range store.Cities() {
		marker := " "
		if city.IsSelected {
			marker = "*"
		}
		lastUsed := time.UnixMilli(city.LastUsed).UTC().Format("2006-01-02 15:04")
		fmt.Printf("%s %-20s %-8s (%.4f, %.4f)  last used %s\n",
			marker, city.Name, city.Country, city.Lat, city.Lon, lastUsed)
	}
	return nil
}
