// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Input Records
// =============================================================================

// Detection is one detector finding as it arrives on the wire.
//
// Score and offsets are not checked here; models.NewDetectionResult owns
// those rules and reports them as typed errors.
type Detection struct {
	EntityType string  `json:"entity_type" yaml:"entity_type" validate:"required"`
	Score      float64 `json:"score" yaml:"score"`
	Start      int     `json:"start" yaml:"start"`
	End        int     `json:"end" yaml:"end"`
}

// Document is one text unit and the detections found in it.
//
// The text itself is optional. When Text is set its length in runes bounds
// the detection offsets; otherwise a positive TextLength does. With neither,
// offsets are only checked for 0 <= start <= end.
type Document struct {
	Index      int         `json:"index,omitempty" yaml:"index,omitempty"`
	Text       string      `json:"text,omitempty" yaml:"text,omitempty"`
	TextLength int         `json:"text_length,omitempty" yaml:"text_length,omitempty" validate:"gte=0"`
	Detections []Detection `json:"detections" yaml:"detections" validate:"dive"`
}

// Collection is an ordered batch of documents. AnalyzeCollection indexes
// documents by their position here, ignoring Document.Index.
type Collection struct {
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Documents []Document `json:"documents" yaml:"documents" validate:"dive"`
}

// inputValidate checks decoded input records.
var inputValidate = validator.New()

// Validate checks the structural rules of the collection.
func (c *Collection) Validate() error {
	if err := inputValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid collection: %w", err)
	}
	return nil
}

// Validate checks the structural rules of the document, including a
// non-negative Index. Collection.Validate skips the index check because
// AnalyzeCollection reassigns it.
func (d *Document) Validate() error {
	if err := inputValidate.Struct(d); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	if d.Index < 0 {
		return fmt.Errorf("invalid document: index %d is negative", d.Index)
	}
	return nil
}
