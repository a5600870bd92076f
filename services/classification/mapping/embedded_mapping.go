// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
Package mapping carries the default PII risk classification table inside the
binary. Deployments that maintain their own table point the classification
service at an external file instead; this copy is the fallback.
*/
package mapping

import (
	_ "embed"
)

// PIIRiskMapping holds the raw bytes of 'pii_risk_mapping.yaml'.
//
// Usage:
//
//	table, err := classification.LoadTable(mapping.PIIRiskMapping)
//
//go:embed pii_risk_mapping.yaml
var PIIRiskMapping []byte
