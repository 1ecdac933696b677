// Package cli implements ledgerctl, the operator command line for the ledger.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/flowi-ledger/internal/bootstrap"
	"github.com/flowi-ledger/internal/config"
	"github.com/flowi-ledger/internal/ledger_api/service"
	"github.com/flowi-ledger/internal/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

// Services are what the commands operate on
type Services struct {
	Rates       service.RateService
	Obligations service.ObligationService
	Dashboard   service.DashboardService
}

// Opener builds the services for one command run. release is called once the command finishes.
type Opener func(ctx context.Context, configName string) (svc *Services, release func(), err error)

type state struct {
	open       Opener
	configName string
	asJSON     bool
	svc        *Services
	release    func()
}

// close releases the services once; commands that fail skip the post-run hook
func (st *state) close() {
	if st.release != nil {
		st.release()
		st.release = nil
	}
}

// NewRootCommand assembles the command tree on top of open
func NewRootCommand(open Opener) *cobra.Command {
	root, _ := newRootCommand(open)
	return root
}

func newRootCommand(open Opener) (*cobra.Command, *state) {
	st := &state{open: open}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the dual-currency ledger from the command line",
		Long: `ledgerctl talks to the same stores as the ledger API.

It records exchange rates, runs the overdue reconciliation and prints
the dashboard figures without going through HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := st.open(cmd.Context(), st.configName)
			if err != nil {
				return err
			}
			st.svc, st.release = svc, release
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			st.close()
		},
	}

	root.PersistentFlags().StringVar(&st.configName, "config", "ledger_api", "Base name of the .env configuration file")
	root.PersistentFlags().BoolVar(&st.asJSON, "json", false, "Print results as JSON")

	root.AddCommand(newRateCommand(st), newObligationsCommand(st), newDashboardCommand(st))
	return root, st
}

// Execute runs ledgerctl against the configured stores
func Execute() {
	root, st := newRootCommand(openStores)
	err := root.ExecuteContext(context.Background())
	st.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStores loads configuration and wires the services the same way the API does
func openStores(ctx context.Context, configName string) (*Services, func(), error) {
	cfg, err := config.LoadConfig(configName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.NewLoggerTo(cfg, os.Stderr)

	app, err := bootstrap.Build(ctx, log, cfg)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		_ = app.Close(context.Background())
	}
	return &Services{Rates: app.Rates, Obligations: app.Obligations, Dashboard: app.Dashboard}, release, nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
