// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AleutianAI/PIICodex/cmd/piicodex/config"
	"github.com/AleutianAI/PIICodex/services/analyzer"
	"github.com/AleutianAI/PIICodex/services/classification"
	"github.com/spf13/cobra"
)

var (
	lookupJSON    bool
	lookupAll     bool
	lookupMapping string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [entity_type...]",
	Short: "Show the risk classification of PII types",
	Long: `Show the classification record of each entity type and the average
risk score of the list.

Examples:
  piicodex lookup EMAIL_ADDRESS PHONE_NUMBER
  piicodex lookup --all
  piicodex lookup US_SSN --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mappingPath := config.Global.MappingPath
		if lookupMapping != "" {
			mappingPath = lookupMapping
		}
		table, err := loadClassifier(mappingPath)
		if err != nil {
			return err
		}
		if lookupAll {
			args = entryTypes(table)
		}
		if len(args) == 0 {
			return errors.New("no entity types given (pass types or --all)")
		}
		return writeLookup(cmd.OutOrStdout(), table, args, lookupJSON)
	},
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Output as JSON")
	lookupCmd.Flags().BoolVar(&lookupAll, "all", false, "Show every mapped type, highest risk first")
	lookupCmd.Flags().StringVar(&lookupMapping, "mapping", "",
		"Classification mapping file (default from config, else embedded)")
	rootCmd.AddCommand(lookupCmd)
}

func entryTypes(table *classification.Table) []string {
	entries := table.Entries()
	types := make([]string, 0, len(entries))
	for _, e := range entries {
		types = append(types, e.PIIType)
	}
	return types
}

func writeLookup(out io.Writer, classifier classification.Classifier, entityTypes []string, asJSON bool) error {
	a, err := analyzer.New(classifier, analyzer.WithLogger(appLogger))
	if err != nil {
		return err
	}
	list, err := a.AssessRisk(entityTypes)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(list)
	}

	for _, ra := range list.RiskAssessments() {
		fmt.Fprintf(out, "%-24s %d  %-22s %s\n",
			ra.PIITypeDetected(), int(ra.RiskLevel()), ra.RiskLevelDefinition(), ra.ClusterMembershipType())
		writeCategory(out, "HIPAA", ra.HIPAACategory)
		writeCategory(out, "DHS", ra.DHSCategory)
		writeCategory(out, "NIST", ra.NISTCategory)
	}
	fmt.Fprintf(out, "\nAverage Risk Score: %.2f\n", list.AverageRiskScore())
	return nil
}

func writeCategory(out io.Writer, label string, get func() (string, bool)) {
	if v, ok := get(); ok {
		fmt.Fprintf(out, "    %-6s %s\n", label+":", v)
	}
}
