package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <id>",
	Short: "Make a theme the active login stylesheet",
	Long: `Copy the theme's CSS over the login stylesheet and record it as current.

Use "default" to restore the original stylesheet.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-sync the login stylesheet with the recorded current theme",
	Long: `Rewrite the login stylesheet if it no longer matches the current theme.

If the recorded theme no longer exists, the default theme is applied.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	id, err := manager.Apply(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied theme %s\n", id)
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	id, err := manager.Reconcile()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Active theme: %s\n", id)
	return nil
}
