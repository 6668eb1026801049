package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/loginthemes/internal/theme"
)

// Output formats accepted by -o.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatCSS   = "css"
)

const activeMarker = "●"

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// listOutput is the structured form of "list", matching GET /list.
type listOutput struct {
	Themes       []theme.ThemeRecord `json:"themes" yaml:"themes"`
	CurrentTheme string              `json:"currentTheme" yaml:"currentTheme"`
}

// currentOutput is the structured form of "current", matching GET /current.
type currentOutput struct {
	CurrentTheme string             `json:"currentTheme" yaml:"currentTheme"`
	ThemeInfo    *theme.ThemeRecord `json:"themeInfo" yaml:"themeInfo"`
}

// writeStructured encodes v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// renderThemeTable writes one row per theme, marking the active one.
func renderThemeTable(w io.Writer, records []theme.ThemeRecord, current string, size func(id string) int64) error {
	rows := make([][]string, 0, len(records))
	activeRow := -1
	for i, r := range records {
		marker := ""
		if r.ID == current {
			marker = activeMarker
			activeRow = i
		}
		version := r.Version
		if version == "" {
			version = "-"
		}
		rows = append(rows, []string{
			marker,
			r.ID,
			r.Name,
			r.Author,
			version,
			humanize.Bytes(uint64(max(size(r.ID), 0))),
			relativeTime(lastChanged(r)),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("", "ID", "NAME", "AUTHOR", "VERSION", "SIZE", "CHANGED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case row == activeRow:
				return activeStyle.Padding(0, 1)
			default:
				return cellStyle
			}
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// renderCurrent writes a short human description of the active theme.
func renderCurrent(w io.Writer, id string, record *theme.ThemeRecord) error {
	if record == nil {
		_, err := fmt.Fprintf(w, "%s %s\n", activeStyle.Render(id), mutedStyle.Render("(not found, default is used)"))
		return err
	}

	fmt.Fprintf(w, "%s %s\n", activeStyle.Render(record.ID), record.Name)
	fmt.Fprintf(w, "  author:  %s\n", record.Author)
	if record.Version != "" {
		fmt.Fprintf(w, "  version: %s\n", record.Version)
	}
	if record.Description != "" {
		fmt.Fprintf(w, "  about:   %s\n", record.Description)
	}
	if record.ImportedAt != nil {
		fmt.Fprintf(w, "  added:   %s\n", relativeTime(record.ImportedAt))
	}
	if record.UpdatedAt != nil {
		fmt.Fprintf(w, "  updated: %s\n", relativeTime(record.UpdatedAt))
	}
	return nil
}

func lastChanged(r theme.ThemeRecord) *time.Time {
	if r.UpdatedAt != nil {
		return r.UpdatedAt
	}
	return r.ImportedAt
}

func relativeTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return humanize.Time(*t)
}

// themeSize returns the stylesheet size backing id, or -1 if unknown.
func themeSize(id string) int64 {
	if id == theme.DefaultThemeID {
		if info, err := os.Stat(manager.Paths.BackupPath()); err == nil {
			return info.Size()
		}
		return int64(len(theme.FallbackCSS()))
	}
	info, err := os.Stat(manager.Paths.ThemePath(id))
	if err != nil {
		return -1
	}
	return info.Size()
}
