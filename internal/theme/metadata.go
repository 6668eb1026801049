package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// Metadata defaults.
const (
	DefaultAuthor  = "Unknown"
	DefaultVersion = "1.0.0"
)

// headerBlockRegex matches the first /* ... */ comment in a stylesheet.
var headerBlockRegex = regexp.MustCompile(`(?s)/\*(.*?)\*/`)

// headerTagRegex matches "@tag value" lines inside a header comment.
var headerTagRegex = regexp.MustCompile(`(?i)@(name|author|description|version)[ \t]+([^\r\n]+)`)

// Metadata is the fixed display schema shared by sidecar files, CSS header
// tags and caller supplied metadata.
type Metadata struct {
	Name        string     `json:"name"`
	Author      string     `json:"author"`
	Description string     `json:"description"`
	Version     string     `json:"version"`
	ImportedAt  *time.Time `json:"importedAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// ThemeRecord is the merged, display-ready description of one theme.
type ThemeRecord struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Author      string     `json:"author" yaml:"author"`
	Description string     `json:"description" yaml:"description"`
	Version     string     `json:"version,omitempty" yaml:"version,omitempty"`
	IsBuiltIn   bool       `json:"isBuiltIn" yaml:"isBuiltIn"`
	ImportedAt  *time.Time `json:"importedAt,omitempty" yaml:"importedAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// DefaultRecord returns the synthetic record of the built-in default theme.
func DefaultRecord() ThemeRecord {
	return ThemeRecord{
		ID:          DefaultThemeID,
		Name:        "Default",
		Author:      "SillyTavern",
		Description: "Original login theme",
		IsBuiltIn:   true,
	}
}

// mergeMetadata layers metadata in order; a non-empty field in a later layer
// replaces the value from earlier layers.
//
//	defaults < sidecar file < CSS header tags
func mergeMetadata(layers ...Metadata) Metadata {
	var out Metadata
	for _, m := range layers {
		if m.Name != "" {
			out.Name = m.Name
		}
		if m.Author != "" {
			out.Author = m.Author
		}
		if m.Description != "" {
			out.Description = m.Description
		}
		if m.Version != "" {
			out.Version = m.Version
		}
		if m.ImportedAt != nil {
			out.ImportedAt = m.ImportedAt
		}
		if m.UpdatedAt != nil {
			out.UpdatedAt = m.UpdatedAt
		}
	}
	return out
}

// record builds the ThemeRecord for a custom theme from merged metadata.
func (m Metadata) record(id string) ThemeRecord {
	return ThemeRecord{
		ID:          id,
		Name:        m.Name,
		Author:      m.Author,
		Description: m.Description,
		Version:     m.Version,
		ImportedAt:  m.ImportedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ParseHeader extracts @name, @author, @description and @version tags from
// the first comment block of a stylesheet. Only the first occurrence of each
// tag counts. Timestamps are never set.
func ParseHeader(css string) Metadata {
	var meta Metadata

	block := headerBlockRegex.FindStringSubmatch(css)
	if block == nil {
		return meta
	}

	seen := make(map[string]bool)
	for _, match := range headerTagRegex.FindAllStringSubmatch(block[1], -1) {
		tag := strings.ToLower(match[1])
		if seen[tag] {
			continue
		}
		seen[tag] = true

		value := strings.TrimSpace(match[2])
		switch tag {
		case "name":
			meta.Name = value
		case "author":
			meta.Author = value
		case "description":
			meta.Description = value
		case "version":
			meta.Version = value
		}
	}

	return meta
}

// readSidecar loads a sidecar metadata file. Fields are decoded one by one:
// a mistyped field is dropped, the others are kept. Only a file that is not
// a JSON object fails. Errors wrap the underlying os error, so callers can
// test for os.ErrNotExist.
func readSidecar(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Metadata{}, fmt.Errorf("parse sidecar %s: %w", path, err)
	}

	return Metadata{
		Name:        sidecarString(fields["name"]),
		Author:      sidecarString(fields["author"]),
		Description: sidecarString(fields["description"]),
		Version:     sidecarString(fields["version"]),
		ImportedAt:  sidecarTime(fields["importedAt"]),
		UpdatedAt:   sidecarTime(fields["updatedAt"]),
	}, nil
}

// sidecarString accepts a JSON string or number; anything else is empty.
func sidecarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// sidecarTimeLayouts are tried in order when reading sidecar timestamps.
var sidecarTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly}

// sidecarTime parses an RFC 3339 or date-only timestamp, or returns nil.
func sidecarTime(raw json.RawMessage) *time.Time {
	s := sidecarString(raw)
	if s == "" {
		return nil
	}
	for _, layout := range sidecarTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// writeSidecar overwrites a sidecar metadata file.
func writeSidecar(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
