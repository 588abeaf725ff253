package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/config"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/logger"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/marketdata"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/report"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/valuation"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/volatility"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to JSON config")
	dataDir := flag.String("data-dir", "", "read market data from CSV files in this directory")
	outDir := flag.String("out", "output", "directory for report files")
	verbosity := flag.Int("v", 1, "log verbosity (0=error..3=trace)")
	rest := flag.Bool("rest", false, "run as REST server (accept valuation jobs)")
	port := flag.String("port", ":8080", "REST server listen address")
	flag.Parse()

	logger.SetVerbosity(*verbosity)

	logger.Infof("loading configuration from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	prov := chooseProvider(cfg)
	orch := valuation.New(prov)
	inputs := inputsFromConfig(cfg)

	if *rest {
		mux := http.NewServeMux()
		mux.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
			logger.Infof("received /run request")
			res, err := orch.Run(r.Context(), inputs)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(report.Payload(res))
		})
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		logger.Infof("starting REST server on %s", *port)
		log.Fatal(http.ListenAndServe(*port, mux))
		return
	}

	start := time.Now()
	res, err := orch.Run(context.Background(), inputs)
	if err != nil {
		log.Fatalf("valuation failed: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("creating output dir %s: %v", *outDir, err)
	}
	if err := report.WriteJSON(res, *outDir); err != nil {
		logger.Errorf("writing JSON report: %v", err)
	}
	if err := report.WriteCSV(res, *outDir); err != nil {
		logger.Errorf("writing CSV report: %v", err)
	}
	if err := report.WriteXLSX(res, *outDir); err != nil {
		logger.Errorf("writing XLSX report: %v", err)
	}

	logger.Infof("finished in %v, option value %.2f, results saved to %s",
		time.Since(start), res.OptionValue, *outDir)
}

// chooseProvider picks the market data source: local CSV files when
// data_dir is set, Yahoo when reachable credentials-free live data is
// wanted (the default), synthetic when SBC_OFFLINE=1.
func chooseProvider(cfg *config.Config) marketdata.Provider {
	if cfg.DataDir != "" {
		logger.Infof("local file provider enabled (%s)", cfg.DataDir)
		return marketdata.NewLocalFileProvider(cfg.DataDir)
	}
	if os.Getenv("SBC_OFFLINE") != "" {
		logger.Infof("synthetic provider enabled")
		return marketdata.NewSyntheticProvider()
	}
	logger.Infof("yahoo provider enabled")
	return marketdata.NewYahooProvider(cfg.YahooBaseURL)
}

func inputsFromConfig(cfg *config.Config) valuation.Inputs {
	return valuation.Inputs{
		Spot:           cfg.StockPrice,
		Strike:         cfg.StrikePrice,
		GrantDate:      cfg.GrantDateTime(),
		ValuationDate:  cfg.ValuationDateTime(),
		ExpirationDate: cfg.ExpirationDateTime(),
		VestingEndDate: cfg.VestingEndDateTime(),
		Tickers:        cfg.PublicComps,
		Frequency:      volatility.Frequency(cfg.Frequency),
	}
}
