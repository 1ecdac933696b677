package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/spf13/cobra"
)

func newObligationsCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "obligations",
		Aliases: []string{"ob"},
		Short:   "Inspect and reconcile receivables and payables",
	}

	var (
		status   string
		currency string
		search   string
	)
	listCmd := &cobra.Command{
		Use:     "list <receivables|payables>",
		Short:   "List a collection after the overdue pass",
		Example: "  ledgerctl obligations list receivables --status overdue --currency USD",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			criteria := obligation.Criteria{Status: obligation.Status(status), Search: search}
			if status != "" && !criteria.Status.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			if currency != "" {
				if criteria.Currency, err = shared.ParseCurrency(currency); err != nil {
					return err
				}
			}

			entries, err := st.svc.Obligations.List(cmd.Context(), kind, criteria)
			if err != nil {
				return err
			}
			if st.asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REFERENCE\tCOUNTERPARTY\tAMOUNT\tDUE\tSTATUS")
			for _, o := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					o.ReferenceNumber, o.CounterpartyName, o.Money().String(), o.DueDate.Format(time.DateOnly), o.Status)
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "Only entries in this status (pending, overdue, paid, cancelled)")
	listCmd.Flags().StringVar(&currency, "currency", "", "Only entries in this currency (USD, VES)")
	listCmd.Flags().StringVarP(&search, "search", "q", "", "Match reference, counterparty or description")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile [receivables|payables]",
		Short: "Move pending entries past their due date to overdue",
		Long: `Runs the overdue pass on one collection, or on both when no kind is given.
Each moved entry is persisted and announced as an obligation.overdue event.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := []obligation.Kind{obligation.KindReceivable, obligation.KindPayable}
			if len(args) == 1 {
				kind, err := parseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []obligation.Kind{kind}
			}

			moved := make(map[string][]string, len(kinds))
			for _, kind := range kinds {
				ids, err := st.svc.Obligations.Reconcile(cmd.Context(), kind)
				if err != nil {
					return fmt.Errorf("reconciling %s: %w", kind.Collection(), err)
				}
				out := make([]string, 0, len(ids))
				for _, id := range ids {
					out = append(out, id.String())
				}
				moved[kind.Collection()] = out
			}

			if st.asJSON {
				return printJSON(cmd.OutOrStdout(), moved)
			}
			for _, kind := range kinds {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d moved to overdue\n", kind.Collection(), len(moved[kind.Collection()]))
			}
			return nil
		},
	}

	summaryCmd := &cobra.Command{
		Use:   "summary <receivables|payables>",
		Short: "Print outstanding and overdue totals per currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			summary, err := st.svc.Obligations.Summary(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if st.asJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Outstanding: %s | %s\n",
				shared.Format(summary.Outstanding.USD, shared.CurrencyUSD), shared.Format(summary.Outstanding.VES, shared.CurrencyVES))
			fmt.Fprintf(w, "Overdue:     %s | %s\n",
				shared.Format(summary.Overdue.USD, shared.CurrencyUSD), shared.Format(summary.Overdue.VES, shared.CurrencyVES))
			for _, s := range obligation.Statuses {
				fmt.Fprintf(w, "  %-10s %d\n", s, summary.Counts[s])
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, reconcileCmd, summaryCmd)
	return cmd
}

func parseKind(arg string) (obligation.Kind, error) {
	kind, ok := obligation.ParseKind(arg)
	if !ok {
		return "", fmt.Errorf("unknown collection %q, expected receivables or payables", arg)
	}
	return kind, nil
}
