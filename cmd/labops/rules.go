package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/labops/go-sdk/pkg/dq"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage data quality rule documents",
}

var rulesInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the built-in lab rules document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "rules.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return errors.Errorf("%s already exists", path)
		}

		doc, err := dq.SampleLabRulesDocument()
		if err != nil {
			return errors.Wrap(err, "render sample rules")
		}
		if err := os.WriteFile(path, doc, 0o644); err != nil {
			return errors.Wrap(err, "write rules document")
		}
		fmt.Printf("wrote %s with %d rules\n", path, len(dq.SampleLabRules()))
		return nil
	},
}

var rulesLintCmd = &cobra.Command{
	Use:   "lint <rules.yaml>",
	Short: "Check that a rules document loads cleanly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "read rules document")
		}

		rules, err := dq.ParseRules(data)
		if err != nil {
			return err
		}

		known := make(map[dq.RuleKind]bool)
		for _, kind := range dq.KnownKinds() {
			known[kind] = true
		}
		for _, rule := range rules {
			if !known[rule.Kind] {
				fmt.Printf("warning: rule %q has unknown rule_type %q and will be skipped\n", rule.Name, rule.Kind)
			}
		}

		fmt.Printf("%s: %d rules OK\n", args[0], len(rules))
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesInitCmd)
	rulesCmd.AddCommand(rulesLintCmd)
}
