package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/labops/go-sdk/pkg/dataset"
	"github.com/labops/go-sdk/pkg/dq"
	"github.com/labops/go-sdk/pkg/logger"
	"github.com/labops/go-sdk/pkg/types"
)

var (
	checkRulesPath string
	checkOutputDir string
	checkVerbose   bool
)

var checkCmd = &cobra.Command{
	Use:   "check <dataset.csv>",
	Short: "Validate a specimen CSV against data quality rules",
	Long: `check runs every rule in the rules document against the dataset and
prints a JSON report. Violations do not fail the command; an unloadable
rules document or an aborted run does.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args[0])
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkRulesPath, "rules", "r", "", "rules YAML document (defaults to the built-in lab rules)")
	checkCmd.Flags().StringVarP(&checkOutputDir, "output", "o", "", "directory to write the report into instead of stdout")
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "log each validation step")
}

func runCheck(datasetPath string) error {
	log := types.NewNoOpLogger()
	if checkVerbose {
		logger.SetDefaultLogger(logger.NewZapLoggerFromConfig(types.LogLevelDebug))
		log = logger.New("check")
	}

	catalog := dq.NewCatalog()
	if checkRulesPath != "" {
		if _, err := catalog.LoadRulesFile(checkRulesPath); err != nil {
			return errors.Wrap(err, "load rules")
		}
	} else {
		catalog.AddRules(dq.SampleLabRules()...)
	}

	ds, err := dataset.ReadCSVFile(datasetPath)
	if err != nil {
		return errors.Wrap(err, "read dataset")
	}

	engine := dq.NewEngine(catalog, log)
	if _, err := engine.Validate(ds); err != nil {
		return errors.Wrap(err, "validation run aborted")
	}

	report := engine.GenerateReport()
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}

	if checkOutputDir != "" {
		if err := os.MkdirAll(checkOutputDir, 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
		path := filepath.Join(checkOutputDir, fmt.Sprintf("report-%s.json", report.ID))
		if err := os.WriteFile(path, encoded, 0o644); err != nil {
			return errors.Wrap(err, "write report")
		}
		fmt.Printf("report written to %s (%d violations)\n", path, report.Summary.TotalViolations)
		return nil
	}

	fmt.Println(string(encoded))
	return nil
}
