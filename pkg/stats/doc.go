// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stats provides the numeric folds behind collection-level risk
// reporting: a mergeable running summary (count, mean, population
// variance) and an insertion-ordered frequency counter.
//
// Both types are built for the map-then-reduce shape of batch analysis.
// Each worker builds its own Summary or Counter over a partition, and the
// partials are merged in partition order, so the result does not depend on
// how the input was split.
package stats
