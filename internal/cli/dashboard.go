package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/spf13/cobra"
)

func newDashboardCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := st.svc.Dashboard.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if st.asJSON {
				return printJSON(cmd.OutOrStdout(), snap)
			}

			usd := func(t shared.CurrencyTotals) string { return shared.Format(t.USD, shared.CurrencyUSD) }
			ves := func(t shared.CurrencyTotals) string { return shared.Format(t.VES, shared.CurrencyVES) }

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if snap.Rate != nil {
				fmt.Fprintf(tw, "Rate\t1 USD = %s VES\t\n", snap.Rate.USDToLocal.String())
			} else {
				fmt.Fprintln(tw, "Rate\tnot set\t")
			}
			fmt.Fprintf(tw, "Today (%s)\t%s\t%s\n", snap.Today.Date, usd(snap.Today.Revenue), ves(snap.Today.Revenue))
			fmt.Fprintf(tw, "Sales today\t%d\t\n", snap.Today.Sales)
			fmt.Fprintf(tw, "Receivables outstanding\t%s\t%s\n", usd(snap.Receivables.Outstanding), ves(snap.Receivables.Outstanding))
			fmt.Fprintf(tw, "Receivables overdue\t%s\t%s\n", usd(snap.Receivables.Overdue), ves(snap.Receivables.Overdue))
			fmt.Fprintf(tw, "Payables outstanding\t%s\t%s\n", usd(snap.Payables.Outstanding), ves(snap.Payables.Outstanding))
			fmt.Fprintf(tw, "Payables overdue\t%s\t%s\n", usd(snap.Payables.Overdue), ves(snap.Payables.Overdue))
			fmt.Fprintf(tw, "Products\t%d\t\n", snap.Inventory.Products)
			fmt.Fprintf(tw, "Low stock\t%d\t\n", len(snap.Inventory.LowStock))
			fmt.Fprintf(tw, "Out of stock\t%d\t\n", len(snap.Inventory.OutOfStock))
			for i, p := range snap.TopProducts {
				fmt.Fprintf(tw, "Top %d\t%s\t%s\n", i+1, p.ProductName, shared.Format(p.RevenueUSD, shared.CurrencyUSD))
			}
			return tw.Flush()
		},
	}
}
