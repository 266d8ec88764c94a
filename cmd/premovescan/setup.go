package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/premovescan/premovescan/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a default configuration file if one does not already exist",
	RunE:  runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("%s already exists, leaving it untouched\n", configPath)
		return nil
	}

	def := config.Default()
	def.Exchanges = []config.ExchangeConfig{
		{Name: "binance", Enabled: true},
		{Name: "okx", Enabled: true},
		{Name: "bybit", Enabled: true},
	}

	data, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	fmt.Printf("wrote default config to %s\n", configPath)
	return nil
}
