package cli

import (
	"github.com/spf13/cobra"
)

func newProvisionCmd() *cobra.Command {
	var userID, target string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision a cross-account principal",
		Long:  "Creates the cross-account principal for a user in the target tenant. Idempotent.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			principal, err := rt.app.Provisioner.Provision(cmd.Context(), userID, target)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"id":            principal.ID,
				"user_id":       principal.UserID,
				"tenant_id":     principal.TenantID,
				"cross_account": principal.CrossAccount,
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "external user id (required)")
	cmd.Flags().StringVar(&target, "target", "", "target org id or account number (required)")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
