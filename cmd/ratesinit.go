package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mysticcoders/freshbooks-tools/internal/config"
)

var ratesInitForce bool

var ratesInitCmd = &cobra.Command{
	Use:   "rates-init",
	Short: "Write an annotated sample rates.yaml",
	Long: `rates-init writes a commented sample rates file to the fb config
directory. Edit it to set per-member cost and billable overrides; the
file is consulted before any API rate source.`,
	Args: cobra.NoArgs,
	RunE: runRatesInit,
}

func init() {
	ratesInitCmd.Flags().BoolVar(&ratesInitForce, "force", false, "Overwrite an existing rates file")
}

func runRatesInit(cmd *cobra.Command, args []string) error {
	path, err := config.WriteSampleRates(ratesInitForce)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote sample rates file to %s\n", path)
	fmt.Println("Edit it to match your team, then rerun your report.")
	return nil
}
