package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var discoverCountry string

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List the actively traded stocks of a country",
	Long: `List name and ticker of a country's most active stocks. When the screener
returns nothing the constituents of the country's main index are listed instead.

Example usage:
  duel discover --country US
  duel discover --country IN`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}

		dir := a.discoverer.Discover(cmd.Context(), discoverCountry)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSYMBOL")
		for _, name := range dir.Names() {
			fmt.Fprintf(w, "%s\t%s\n", name, dir[name])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringVar(&discoverCountry, "country", "US", "Country code, e.g. US, IN, GB, DE")
}
