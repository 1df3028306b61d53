package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gear6io/msidump/msi"
)

var tablesCmd = &cobra.Command{
	Use:   "tables <msi-file>",
	Short: "Decode an MSI package and print the table dump",
	Long: `Decode an MSI package and emit only the JSON table dump, without
writing the rest of the artifact set.

Examples:
  msidump tables installer.msi
  msidump tables installer.msi --output tables.json`,
	Args: cobra.ExactArgs(1),
	RunE: runTables,
}

func runTables(cmd *cobra.Command, args []string) error {
	_, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	artifacts, err := decodeFile(logger, args[0])
	if err != nil {
		return err
	}
	doc, ok := artifacts[msi.TablesArtifact]
	if !ok {
		return fmt.Errorf("decoder produced no %s", msi.TablesArtifact)
	}

	if outFile, _ := cmd.Flags().GetString("output"); outFile != "" {
		if err := os.WriteFile(outFile, doc, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outFile, err)
		}
		logger.Info().Str("file", outFile).Int("bytes", len(doc)).Msg("table dump written")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(doc))
	return nil
}

func init() {
	tablesCmd.Flags().StringP("output", "o", "", "write the dump to a file instead of stdout")
	rootCmd.AddCommand(tablesCmd)
}
