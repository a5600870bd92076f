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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a collection file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses "json", "yaml" or "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", s)
	}
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeCollection reads and validates a collection.
//
// Unknown fields are rejected in both formats so a misspelled key such as
// "entitytype" fails loudly instead of producing an empty detection.
func DecodeCollection(r io.Reader, format Format) (Collection, error) {
	var coll Collection

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&coll); err != nil {
			return Collection{}, decodeError(format, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&coll); err != nil {
			return Collection{}, decodeError(format, err)
		}
	default:
		return Collection{}, fmt.Errorf("unsupported format %q", format)
	}

	if err := coll.Validate(); err != nil {
		return Collection{}, err
	}
	return coll, nil
}

func decodeError(format Format, err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s collection: empty input", format)
	}
	return fmt.Errorf("decode %s collection: %w", format, err)
}
