package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newRateCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Read and record the USD to VES exchange rate",
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Print the rate in force",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := st.svc.Rates.Current(cmd.Context())
			if err != nil {
				return err
			}
			return printRate(cmd, st, rate)
		},
	}

	var source string
	setCmd := &cobra.Command{
		Use:     "set <usd_to_local>",
		Short:   "Record a new rate",
		Example: "  ledgerctl rate set 36.50 --source bcv",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("rate must be a number: %w", err)
			}
			rate, err := st.svc.Rates.SetRate(cmd.Context(), value, source)
			if err != nil {
				return err
			}
			return printRate(cmd, st, rate)
		},
	}
	setCmd.Flags().StringVar(&source, "source", "cli", "Where the rate was taken from")

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded rates, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("limit must be positive")
			}
			rates, err := st.svc.Rates.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if st.asJSON {
				return printJSON(cmd.OutOrStdout(), rates)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CAPTURED AT\tUSD→VES\tSOURCE")
			for _, r := range rates {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.CapturedAt.Format(time.RFC3339), r.USDToLocal.String(), r.Source)
			}
			return tw.Flush()
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of rates to list")

	convertCmd := &cobra.Command{
		Use:     "convert <amount> <from> <to>",
		Short:   "Convert an amount at the rate in force",
		Example: "  ledgerctl rate convert 10 USD VES",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("amount must be a decimal number: %w", err)
			}
			from, err := shared.ParseCurrency(args[1])
			if err != nil {
				return err
			}
			to, err := shared.ParseCurrency(args[2])
			if err != nil {
				return err
			}
			money, rate, err := st.svc.Rates.Convert(cmd.Context(), amount, from, to)
			if err != nil {
				return err
			}
			if st.asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"result": money, "rate": rate})
			}
			fmt.Fprintln(cmd.OutOrStdout(), money.String())
			return nil
		},
	}

	cmd.AddCommand(getCmd, setCmd, historyCmd, convertCmd)
	return cmd
}

func printRate(cmd *cobra.Command, st *state, rate *exchange.Rate) error {
	if st.asJSON {
		return printJSON(cmd.OutOrStdout(), rate)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "1 USD = %s VES (%s, %s)\n",
		rate.USDToLocal.String(), rate.Source, rate.CapturedAt.Format(time.RFC3339))
	return nil
}
