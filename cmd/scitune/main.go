// Command scitune runs grid or Bayesian hyperparameter search over a CSV
// dataset, driven by a YAML configuration.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scitune: %v\n", err)
		os.Exit(1)
	}
}
