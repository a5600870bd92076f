// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package models holds the PII detection, risk assessment and analysis
// records, and the per-document and per-collection risk aggregation.
//
// # Data Flow
//
//	detector output ──► DetectionResult ─┐
//	                                     ├─► AnalysisResultItem
//	classification  ──► RiskAssessment ──┘          │
//	                                                ▼
//	                       AnalysisResult (one text unit, mean risk)
//	                                                │
//	                                                ▼
//	              AnalysisResultSet (collection counts, mean/variance/std-dev)
//
// Every record is validated and its derived fields computed at
// construction. Nothing is mutated afterwards; accessors hand out copies.
//
// # Serialization
//
// Each record exposes ToDict, a map keyed by the wire field names
// (snake_case), and implements json.Marshaler over that map.
package models
