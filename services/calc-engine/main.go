// Standalone calculation sidecar. The legacy Node backend shells out to this
// binary during the migration window instead of embedding the engine: one
// JSON payload in, one JSON result out.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/source"
	"property_dashboard/pkg/core/validate"
	"property_dashboard/pkg/models"
)

// CalcPayload is the calculate-mode input: one property, its candidate
// bundles, and optional market defaults.
type CalcPayload struct {
	Property models.Property    `json:"property"`
	Bundles  source.BundleSet   `json:"bundles"`
	Defaults models.Assumptions `json:"defaults"`
}

func main() {
	mode := flag.String("mode", "calculate", "Mode: calculate or check")
	dataStr := flag.String("data", "", "JSON payload; stdin when empty")
	flag.Parse()

	raw := []byte(*dataStr)
	if len(raw) == 0 {
		var err error
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Printf("Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}
	if len(raw) == 0 {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}

	switch *mode {
	case "calculate":
		runCalculate(raw)
	case "check":
		runCheck(raw)
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}

// runCalculate computes one property's financials and prints them as JSON.
func runCalculate(raw []byte) {
	var in CalcPayload
	if err := json.Unmarshal(raw, &in); err != nil {
		fmt.Printf("Error unmarshaling payload: %v\n", err)
		os.Exit(1)
	}

	engine := calc.NewEngine(nil, in.Defaults, nil)
	fin := engine.Calculate(context.Background(), in.Property, in.Bundles)

	out, err := json.MarshalIndent(fin, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// runCheck verifies a computed result's internal arithmetic identities.
func runCheck(raw []byte) {
	var fin calc.Financials
	if err := json.Unmarshal(raw, &fin); err != nil {
		fmt.Printf("Error unmarshaling financials: %v\n", err)
		os.Exit(1)
	}

	report := validate.ValidateLinkages(fin, 0.01)
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if report.AllPassed {
		fmt.Println("Success: all linkage checks passed")
	} else {
		fmt.Printf("Error: %d linkage check(s) failed\n", len(report.FailedChecks))
		os.Exit(1)
	}
}
