// Fuel catalog inspection tool: prints the info text a player sees for a
// generator, plus the decay timeline of every fuel.
//
// Usage: go run ./cmd/fuelinfo -config config.yaml
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/pthm-cable/rtg/config"
	"github.com/pthm-cable/rtg/decay"
	"github.com/pthm-cable/rtg/fuel"
	"github.com/pthm-cable/rtg/present"
	"github.com/pthm-cable/rtg/settings"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	csvPath := flag.String("csv", "", "Additional fuel CSV file")
	efficiency := flag.Float64("efficiency", 0.5, "Generator efficiency shown in the info text")
	volume := flag.Float64("volume", 5, "Generator volume shown in the info text")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	records := cfg.Fuels
	if *csvPath != "" {
		extra, err := fuel.ReadCSVFile(*csvPath)
		if err != nil {
			log.Fatalf("failed to read fuel CSV: %v", err)
		}
		records = append(records, extra...)
	}

	reg, report := fuel.Build(records)
	for _, err := range report.Errors {
		fmt.Fprintf(os.Stderr, "skipped: %v\n", err)
	}

	globals, errs := settings.Build(cfg.Globals)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "setting ignored: %v\n", err)
	}

	fmt.Print(present.Info(reg, globals, *efficiency, *volume))
	fmt.Println()

	// Decay timeline: time to reach each remaining fraction
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "fuel\thalf-life (y)\t75% (y)\t50% (y)\t10% (y)\t1% (y)\tfull output")
	for _, f := range reg.Configs() {
		years := func(fraction float64) string {
			return present.Display(decay.ElapsedFor(fraction, f.HalflifeYears) / decay.SecondsPerYear)
		}
		raw := decay.Output(f, *volume, globals.HeatScale)
		value, unit := present.Format(raw, *efficiency, globals)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s %s\n",
			f.ResourceAbbr,
			present.Display(f.HalflifeYears),
			years(0.75), years(0.5), years(0.1), years(0.01),
			present.Display(value), unit,
		)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("failed to write table: %v", err)
	}
}
