package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kmorrow/storylens/pkg/dashboard"
	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/logging"
	"github.com/kmorrow/storylens/pkg/metrics"
	"github.com/kmorrow/storylens/pkg/orchestrator"
	"github.com/kmorrow/storylens/pkg/rules"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "YAML story snapshot to analyze")
	rulesPath := flag.String("rules", "", "Optional YAML rule file (defaults to the built-in vocabulary)")
	initiativeID := flag.String("initiative", "", "Optional initiative ID to focus on")
	flag.Parse()

	if *snapshotPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	port, err := graphport.LoadSnapshot(*snapshotPath)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}

	rs := rules.DefaultRuleSet()
	if *rulesPath != "" {
		rs, err = rules.Load(*rulesPath)
		if err != nil {
			log.Fatalf("Failed to load rules: %v", err)
		}
	}

	logger := logging.NewDefaultLogger()
	orch := orchestrator.New(port, rs, logger,
		orchestrator.WithMetrics(metrics.DefaultRegistry()))

	report, err := orch.RunComprehensiveAnalysis(context.Background(), *initiativeID)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	out, err := json.MarshalIndent(dashboard.Build(report), "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode dashboard: %v", err)
	}
	fmt.Println(string(out))
}
