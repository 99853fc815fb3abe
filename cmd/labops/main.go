package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "labops",
	Short: "Lab operations data quality and metrics toolkit",
	Long: `labops validates laboratory specimen datasets against configurable data
quality rules and computes operational metrics (turnaround time, throughput,
error rates, SLA compliance). It can run one-shot checks or serve an HTTP API.`,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
