package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Resolve this device's identity, creating one on first use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			u, err := a.identity(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return nil
		},
	}
}

func newForgetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete this device's identity and everything it owns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete the identity without --yes")
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			u, err := a.identity(ctx)
			if err != nil {
				return err
			}
			if err := a.session.DeleteIdentity(ctx, u.ID); err != nil {
				a.log.Error().Err(err).Str("user_id", u.ID).Msg("delete identity failed")
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identity deleted: %s\n", u.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")
	return cmd
}
