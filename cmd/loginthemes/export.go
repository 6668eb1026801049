package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var exportOpts struct {
	output string
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a theme's CSS and metadata",
	Long: `Export a theme's CSS together with its metadata.

-o json (default) and -o yaml print {css, meta}; -o css prints only the
stylesheet, suitable for "loginthemes import" on another installation.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationSkipInit: "true"},
	RunE:        runExport,
}

var previewCmd = &cobra.Command{
	Use:         "preview <id>",
	Short:       "Print a theme's raw CSS",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationSkipInit: "true"},
	RunE:        runPreview,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(previewCmd)

	exportCmd.Flags().StringVarP(&exportOpts.output, "output", "o", formatJSON,
		"Output format (json, yaml, css)")
}

func runExport(cmd *cobra.Command, args []string) error {
	export, err := manager.Export(args[0])
	if err != nil {
		return err
	}

	switch exportOpts.output {
	case formatCSS:
		_, err = io.WriteString(cmd.OutOrStdout(), export.CSS)
		return err
	case formatJSON, formatYAML:
		return writeStructured(cmd.OutOrStdout(), exportOpts.output, export)
	default:
		return fmt.Errorf("unsupported output format %q", exportOpts.output)
	}
}

func runPreview(cmd *cobra.Command, args []string) error {
	export, err := manager.Export(args[0])
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), export.CSS)
	return err
}
