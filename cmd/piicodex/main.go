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
	"fmt"
	"os"
)

// Exit codes shared by every command.
const (
	ExitSuccess   = 0 // completed, risk at or below threshold
	ExitRiskFound = 1 // collection mean risk above threshold
	ExitError     = 2 // bad input, config or mapping
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

// exit flushes telemetry and logs before leaving; os.Exit skips deferred
// calls.
func exit(code int) {
	shutdownRuntime()
	os.Exit(code)
}
