package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/paul-bokelman/hem/client"
)

func newActionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "actions", Short: "Built-in action operations"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			actions, err := a.session.Actions(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, act := range actions {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", act.ID, act.Name, act.Description)
			}
			return tw.Flush()
		},
	})

	var name, description string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an action (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			act, err := a.session.CreateAction(ctx, client.ActionInput{Name: name, Description: description})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Action created: %s - %s\n", act.ID, act.Name)
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Action name (required)")
	createCmd.Flags().StringVar(&description, "description", "", "Description (optional)")
	_ = createCmd.MarkFlagRequired("name")
	cmd.AddCommand(createCmd)

	var editName, editDescription string
	editCmd := &cobra.Command{
		Use:   "edit <action-id>",
		Short: "Edit an action (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			act, err := a.session.EditAction(ctx, args[0], client.ActionInput{Name: editName, Description: editDescription})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Action updated: %s - %s\n", act.ID, act.Name)
			return nil
		},
	}
	editCmd.Flags().StringVar(&editName, "name", "", "New name (keeps the current one when empty)")
	editCmd.Flags().StringVar(&editDescription, "description", "", "New description")
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <action-id>",
		Short: "Delete an action (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if err := a.session.DeleteAction(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Action deleted: %s\n", args[0])
			return nil
		},
	})

	return cmd
}
