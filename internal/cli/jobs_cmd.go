package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	var tenantName string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run principal reconciliation once and exit",
		Long:  "Reconciles principals against the identity service for one tenant (--tenant) or the whole fleet.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.cfg.Identity.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if tenantName != "" {
				tenant, err := rt.app.Tenants.GetByName(ctx, tenantName)
				if err != nil {
					return err
				}
				report, err := rt.app.Reconciler.Reconcile(ctx, tenant)
				if err != nil {
					return err
				}
				return printJSON(report)
			}

			report, err := rt.app.Fleet.ReconcileAll(ctx)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}

	cmd.Flags().StringVar(&tenantName, "tenant", "", "reconcile a single tenant by name")
	return cmd
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire lapsed cross-account requests once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			report, err := rt.app.Sweeper.SweepExpired(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
