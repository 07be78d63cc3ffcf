// Command slice-align registers pairs of microscopy slice images from point
// correspondences.
package main

import (
	"os"

	"slice-align/internal/cli"
	"slice-align/internal/logging"
)

func main() {
	level := os.Getenv("SLICE_ALIGN_LOG_LEVEL")
	format := os.Getenv("SLICE_ALIGN_LOG_FORMAT")
	log := logging.New(level, format)

	if err := cli.NewRootCmd(log).Execute(); err != nil {
		os.Exit(1)
	}
}
