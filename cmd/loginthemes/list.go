package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listOpts struct {
	output string
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available themes",
	Long: `List the default theme followed by every custom theme.

The active theme is marked. Use -o json or -o yaml for the same shape the
HTTP API returns from /list.`,
	Annotations: map[string]string{annotationSkipInit: "true"},
	RunE:        runList,
}

var currentOpts struct {
	output string
}

var currentCmd = &cobra.Command{
	Use:         "current",
	Short:       "Show the active theme",
	Annotations: map[string]string{annotationSkipInit: "true"},
	RunE:        runCurrent,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(currentCmd)

	listCmd.Flags().StringVarP(&listOpts.output, "output", "o", formatTable,
		"Output format (table, json, yaml)")
	currentCmd.Flags().StringVarP(&currentOpts.output, "output", "o", formatTable,
		"Output format (table, json, yaml)")
}

func runList(cmd *cobra.Command, args []string) error {
	records := manager.List()
	current, _ := manager.Current()

	switch listOpts.output {
	case formatTable:
		return renderThemeTable(cmd.OutOrStdout(), records, current, themeSize)
	case formatJSON, formatYAML:
		return writeStructured(cmd.OutOrStdout(), listOpts.output, listOutput{
			Themes:       records,
			CurrentTheme: current,
		})
	default:
		return fmt.Errorf("unsupported output format %q", listOpts.output)
	}
}

func runCurrent(cmd *cobra.Command, args []string) error {
	id, record := manager.Current()

	switch currentOpts.output {
	case formatTable:
		return renderCurrent(cmd.OutOrStdout(), id, record)
	case formatJSON, formatYAML:
		return writeStructured(cmd.OutOrStdout(), currentOpts.output, currentOutput{
			CurrentTheme: id,
			ThemeInfo:    record,
		})
	default:
		return fmt.Errorf("unsupported output format %q", currentOpts.output)
	}
}
