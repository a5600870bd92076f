// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package classification

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/AleutianAI/PIICodex/pkg/models"
	"github.com/AleutianAI/PIICodex/services/classification/mapping"
	"gopkg.in/yaml.v3"
)

// Table is the PII type to risk classification lookup. It holds the parsed
// mapping file and answers Classify queries from a map built at load time.
//
// Table is read-only after loading and safe for concurrent use.
type Table struct {
	entries     []Entry
	assessments map[string]models.RiskAssessment
	digest      string
}

// LoadTable parses, validates and indexes a YAML mapping.
//
// It performs the following operations:
// 1. Unmarshals the YAML.
// 2. Validates every entry (format, level range, duplicates).
// 3. Sorts entries from highest to lowest risk.
// 4. Builds the assessment for every entry.
//
// Returns an error if the YAML is malformed or any entry is invalid.
func LoadTable(data []byte) (*Table, error) {
	var file MappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the mapping file: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	file.SortByRisk()

	assessments := make(map[string]models.RiskAssessment, len(file.Entries))
	for _, e := range file.Entries {
		a, err := e.Assessment()
		if err != nil {
			return nil, err
		}
		assessments[e.PIIType] = a
	}

	sum := sha256.Sum256(data)
	return &Table{
		entries:     file.Entries,
		assessments: assessments,
		digest:      hex.EncodeToString(sum[:]),
	}, nil
}

// LoadTableFile reads an external mapping file.
func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the mapping file %s: %w", path, err)
	}
	table, err := LoadTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// DefaultTable loads the mapping embedded in the binary.
func DefaultTable() (*Table, error) {
	table, err := LoadTable(mapping.PIIRiskMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to load the embedded mapping: %w", err)
	}
	return table, nil
}

// Classify returns the assessment for entityType. Entity types are matched
// exactly; an unknown type returns *models.UnmappedEntityError.
func (t *Table) Classify(entityType string) (models.RiskAssessment, error) {
	a, ok := t.assessments[entityType]
	if !ok {
		return models.RiskAssessment{}, &models.UnmappedEntityError{EntityType: entityType}
	}
	return a, nil
}

// Entries returns a copy of the entries, highest risk first.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of PII types in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Digest returns the hex SHA-256 of the mapping source, so a report can
// name the exact table it was classified against.
func (t *Table) Digest() string {
	return t.digest
}

var _ Classifier = (*Table)(nil)
