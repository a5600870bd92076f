// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer pairs detector output with risk classifications and
// aggregates them into document and collection statistics.
//
// # Data Flow
//
//	Collection (JSON/YAML)
//	    │ DecodeCollection
//	    ▼
//	shard 0 ── shard 1 ── ... ── shard k      (errgroup, bounded)
//	    │ AnalyzeDocument per document
//	    │   NewDetectionResult → Classify → NewAnalysisResultItem
//	    ▼
//	partial AnalysisResultSet per shard
//	    │ CombineAnalysisResultSets (in order)
//	    ▼
//	AnalysisResultSet
//
// Detection itself is out of scope: documents arrive with their
// detections already attached. The analyzer never logs document text.
package analyzer
