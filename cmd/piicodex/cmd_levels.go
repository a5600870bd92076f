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
	"fmt"
	"io"

	"github.com/AleutianAI/PIICodex/pkg/models"
	"github.com/spf13/cobra"
)

var levelsJSON bool

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the risk levels",
	Long: `List the risk levels from least to most identifying.

A level's ordinal is its risk score: the mean risk score of a text is the
mean of the ordinals of the PII types detected in it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeLevels(cmd.OutOrStdout(), levelsJSON)
	},
}

func init() {
	levelsCmd.Flags().BoolVar(&levelsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(levelsCmd)
}

func writeLevels(out io.Writer, asJSON bool) error {
	levels := models.RiskLevels()
	if asJSON {
		rows := make([]map[string]any, 0, len(levels))
		for _, l := range levels {
			rows = append(rows, map[string]any{
				"risk_level":            int(l),
				"risk_level_definition": string(l.Definition()),
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	}

	for _, l := range levels {
		fmt.Fprintf(out, "%d  %s\n", int(l), l.Definition())
	}
	return nil
}
