package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gear6io/msidump/msi/container"
)

var streamsCmd = &cobra.Command{
	Use:   "streams <msi-file>",
	Short: "List the raw container streams of an MSI package",
	Long: `List every stream in the package's compound-document container with
its demangled name and size, without decoding any tables.

Examples:
  msidump streams installer.msi`,
	Args: cobra.ExactArgs(1),
	RunE: runStreams,
}

func runStreams(cmd *cobra.Command, args []string) error {
	if _, _, err := setup(cmd); err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer file.Close()

	streams, err := container.ReadStreams(file)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, s := range streams {
		fmt.Fprintf(out, "%10d  %s\n", s.Size, s.Name)
	}
	fmt.Fprintf(out, "%d streams\n", len(streams))
	return nil
}

func init() {
	rootCmd.AddCommand(streamsCmd)
}
