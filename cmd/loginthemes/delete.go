package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/loginthemes/internal/theme"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a custom theme",
	Long: `Delete a custom theme and its metadata.

Deleting the active theme restores the default theme first. The default
theme cannot be deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	wasActive := manager.State.Load().CurrentTheme == id

	if err := manager.Delete(id); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Deleted theme %s\n", id)
	if wasActive {
		fmt.Fprintf(out, "Applied theme %s\n", theme.DefaultThemeID)
	}
	return nil
}
