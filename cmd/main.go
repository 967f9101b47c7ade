package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"golang-paper-trader/internal/simulation/config"
	"golang-paper-trader/internal/simulation/repository"
	"golang-paper-trader/internal/simulation/service"
	"golang-paper-trader/pkg/logger"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "paper-trader",
	Short: "A CLI for the paper trading simulation",
	Long:  `Paper trader simulates market orders against live quotes with a per-trade fee and a cash ledger.`,
}

var quoteCmd = &cobra.Command{
	Use:   "quote SYMBOL",
	Short: "Print the live quote for a symbol",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg.YahooFinance.CacheTTL = 0

		appLogger, err := logger.New("warn", "console")
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer func() { _ = appLogger.Sync() }()

		quoteSvc := service.NewQuoteService(cfg, appLogger,
			repository.NewYahooFinanceRepository(cfg, appLogger),
			repository.NewTradeEventRepository(nil, 0))

		quote := quoteSvc.GetQuote(context.Background(), args[0])
		out, _ := json.MarshalIndent(quote, "", "  ")
		fmt.Println(string(out))
		if quote.Error != nil {
			os.Exit(2)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-simulation.yaml", "Path to the configuration file")
	rootCmd.AddCommand(quoteCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
