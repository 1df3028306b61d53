package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gear6io/msidump/msi"
	"github.com/gear6io/msidump/msi/container"
)

var extractCmd = &cobra.Command{
	Use:   "extract <msi-file>",
	Short: "Decode an MSI package and write all artifacts to a directory",
	Long: `Decode an MSI package and write the full artifact set to the output
directory: the table dump (MsiTables.json), carved custom action scripts under
Action/, binary table payloads under Binary/, and the remaining raw streams.

Examples:
  msidump extract installer.msi
  msidump extract installer.msi --output unpacked/
  msidump extract installer.msi -v`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	outDir := cfg.Output.Directory
	if flagDir, _ := cmd.Flags().GetString("output"); flagDir != "" {
		outDir = flagDir
	}

	artifacts, err := decodeFile(logger, args[0])
	if err != nil {
		return err
	}

	var written, total int
	for path, data := range artifacts {
		target := filepath.Join(outDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		written++
		total += len(data)
	}

	logger.Info().
		Str("file", args[0]).
		Str("output", outDir).
		Int("artifacts", written).
		Int("bytes", total).
		Msg("extraction complete")
	return nil
}

// decodeFile opens an MSI file, pulls its container streams and runs the
// table decoder
func decodeFile(logger zerolog.Logger, path string) (map[string][]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	magic := make([]byte, 4)
	if _, err := file.ReadAt(magic, 0); err != nil || !container.Sniff(magic) {
		return nil, fmt.Errorf("%s is not a compound-document (MSI) file", path)
	}

	streams, err := container.ReadStreams(file)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("streams", len(streams)).Str("file", path).Msg("container streams loaded")

	return msi.NewDecoder(logger).Decode(container.AsMap(streams))
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "output directory (overrides config)")
	rootCmd.AddCommand(extractCmd)
}
