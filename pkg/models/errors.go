// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package models

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrInvalidOffset indicates detection offsets outside the source text.
	ErrInvalidOffset = errors.New("invalid detection offset")

	// ErrInvalidScore indicates a confidence score outside [0, 1].
	ErrInvalidScore = errors.New("invalid detection score")

	// ErrInvalidRiskLevel indicates an ordinal that is not a RiskLevel.
	ErrInvalidRiskLevel = errors.New("invalid risk level")

	// ErrUnmappedEntity indicates an entity type with no classification.
	ErrUnmappedEntity = errors.New("unmapped entity type")

	// ErrEmptyEntityType indicates a detection or assessment with no PII
	// type name.
	ErrEmptyEntityType = errors.New("empty entity type")

	// ErrMismatchedPairing indicates a detection paired with the assessment
	// of a different entity type.
	ErrMismatchedPairing = errors.New("mismatched detection and assessment")
)

// InvalidOffsetError reports a DetectionResult whose offsets violate
// 0 <= Start <= End <= TextLength. TextLength is -1 when the source text
// length was not known at construction.
type InvalidOffsetError struct {
	EntityType string
	Start      int
	End        int
	TextLength int
}

func (e *InvalidOffsetError) Error() string {
	if e.TextLength < 0 {
		return fmt.Sprintf("invalid offsets for %s: start=%d end=%d", e.EntityType, e.Start, e.End)
	}
	return fmt.Sprintf("invalid offsets for %s: start=%d end=%d text_length=%d",
		e.EntityType, e.Start, e.End, e.TextLength)
}

func (e *InvalidOffsetError) Is(target error) bool { return target == ErrInvalidOffset }

// InvalidScoreError reports a confidence score outside [0, 1].
type InvalidScoreError struct {
	EntityType string
	Score      float64
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("invalid score for %s: %v not in [0, 1]", e.EntityType, e.Score)
}

func (e *InvalidScoreError) Is(target error) bool { return target == ErrInvalidScore }

// InvalidRiskLevelError reports an ordinal outside the RiskLevel enum.
type InvalidRiskLevelError struct {
	Ordinal int
}

func (e *InvalidRiskLevelError) Error() string {
	return fmt.Sprintf("invalid risk level %d: must be between %d and %d",
		e.Ordinal, int(RiskLevelOne), int(RiskLevelFive))
}

func (e *InvalidRiskLevelError) Is(target error) bool { return target == ErrInvalidRiskLevel }

// UnmappedEntityError reports an entity type missing from the
// classification table.
type UnmappedEntityError struct {
	EntityType string
}

func (e *UnmappedEntityError) Error() string {
	return fmt.Sprintf("no classification for entity type %q", e.EntityType)
}

func (e *UnmappedEntityError) Is(target error) bool { return target == ErrUnmappedEntity }

// MismatchedPairingError reports a detection paired with an assessment for
// another PII type.
type MismatchedPairingError struct {
	DetectionType  string
	AssessmentType string
}

func (e *MismatchedPairingError) Error() string {
	return fmt.Sprintf("detection entity type %q does not match assessment type %q",
		e.DetectionType, e.AssessmentType)
}

func (e *MismatchedPairingError) Is(target error) bool { return target == ErrMismatchedPairing }
