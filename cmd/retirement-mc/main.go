// Command retirement-mc runs a retirement Monte Carlo batch from a JSON
// SimulationParams file and prints the resulting BatchResult as JSON
// (spec.md §2.5 CLI entrypoint, in place of the teacher's HTTP server
// command).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/areumfire/retirement-mc/internal/batch"
	"github.com/areumfire/retirement-mc/internal/config"
	"github.com/areumfire/retirement-mc/internal/guardrail"
	"github.com/areumfire/retirement-mc/internal/obslog"
	"github.com/areumfire/retirement-mc/internal/tax"
)

func main() {
	paramsPath := flag.String("params", "", "path to a JSON SimulationParams file")
	iterations := flag.Int("iterations", 1000, "number of Monte Carlo iterations")
	workers := flag.Int("workers", 0, "worker pool size (0 = min(NumCPU, 8))")
	taxYearFlag := flag.Int("tax-year", 2024, "calendar year for the tax configuration")
	verbose := flag.String("verbose", "batch", "trace verbosity: batch, iteration, or year")
	flag.Parse()

	switch *verbose {
	case "year":
		obslog.Verbosity = obslog.LevelYear
	case "iteration":
		obslog.Verbosity = obslog.LevelIteration
	default:
		obslog.Verbosity = obslog.LevelBatch
	}

	if *paramsPath == "" {
		log.Fatal("retirement-mc: -params is required")
	}

	raw, err := os.ReadFile(*paramsPath)
	if err != nil {
		log.Fatalf("retirement-mc: reading params file: %v", err)
	}

	var params config.SimulationParams
	if err := json.Unmarshal(raw, &params); err != nil {
		log.Fatalf("retirement-mc: parsing params file: %v", err)
	}
	params.ApplyDefaults()

	if report := config.Validate(params); !report.OK() {
		log.Fatalf("retirement-mc: invalid parameters: %v", report.Fatal)
	}

	cma := config.DefaultCMA()
	stateTables := tax.DefaultStateConfigs()
	calc := tax.NewCalculator(tax.DefaultYearConfig(*taxYearFlag), stateTables)
	taxYearFn := func(year int) *tax.Calculator { return calc }

	log.Printf("retirement-mc: running %d iterations (%d workers)", *iterations, *workers)
	start := time.Now()

	result, err := batch.Run(context.Background(), params, cma, taxYearFn, batch.Config{
		Iterations:   *iterations,
		WorkerCount:  *workers,
		GuardrailCfg: guardrail.DefaultConfig(),
	})
	if err != nil {
		log.Fatalf("retirement-mc: batch run failed: %v", err)
	}

	log.Printf("retirement-mc: completed %d iterations in %s (success=%0.1f%%)",
		result.Iterations, time.Since(start).Round(time.Millisecond), result.SuccessProbabilityNoDepletion*100)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("retirement-mc: encoding result: %v", err)
	}
}
