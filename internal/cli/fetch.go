package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"metalrates/internal/coordinator"
	"metalrates/internal/extract"
	"metalrates/internal/publish"
)

func newFetchCmd(v *viper.Viper, deps Deps) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fetch [--json]",
		Short: "Runs one fetch and parse cycle and prints the price table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(cmd, v)
			if err != nil {
				return err
			}
			app, err := NewApp(cfg, logger, deps)
			if err != nil {
				return err
			}

			snap, err := app.Coordinator.Refresh(cmd.Context())
			if asJSON {
				if encErr := writeSnapshotJSON(cmd.OutOrStdout(), snap); encErr != nil {
					return encErr
				}
			} else if err == nil {
				writeReadings(cmd.OutOrStdout(), app.Coordinator.Readings())
			}
			if err != nil {
				return fmt.Errorf("fetch failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	cmd.Flags().Int("window", 0, "Override search_window for this run")
	_ = v.BindPFlag("search_window", cmd.Flags().Lookup("window"))

	return cmd
}

func writeSnapshotJSON(w io.Writer, snap coordinator.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// writeReadings prints one row per product with both legs side by side.
func writeReadings(w io.Writer, readings []publish.Reading) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tBUY\tSELL\tUNIT")

	type row struct{ buy, sell, unit string }
	rows := map[extract.ProductKey]*row{}
	var order []extract.ProductKey
	for _, r := range readings {
		cur, ok := rows[r.Product]
		if !ok {
			cur = &row{buy: "-", sell: "-"}
			rows[r.Product] = cur
			order = append(order, r.Product)
		}
		cur.unit = r.Unit
		if !r.Known() {
			continue
		}
		if r.Leg == extract.LegBuy {
			cur.buy = extract.FormatPrice(r.Value.Decimal)
		} else {
			cur.sell = extract.FormatPrice(r.Value.Decimal)
		}
	}
	for _, p := range order {
		r := rows[p]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p, r.buy, r.sell, r.unit)
	}
	tw.Flush()
}
