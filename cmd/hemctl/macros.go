package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/paul-bokelman/hem/client"
)

func newMacrosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "macros", Short: "Operations on this identity's macros"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List macros",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if _, err := a.identity(ctx); err != nil {
				return err
			}
			macros, err := a.session.UserMacros(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tOTHER ACTIONS\tREQUIRED ACTIONS")
			for _, m := range macros {
				names := make([]string, 0, len(m.RequiredActions))
				for _, act := range m.RequiredActions {
					names = append(names, act.Name)
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", m.ID, m.Name, m.AllowOtherActions, strings.Join(names, ","))
			}
			return tw.Flush()
		},
	})

	var in client.MacroInput
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a macro",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if _, err := a.identity(ctx); err != nil {
				return err
			}
			m, err := a.session.CreateMacro(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Macro created: %s - %s\n", m.ID, m.Name)
			return nil
		},
	}
	createCmd.Flags().StringVar(&in.Name, "name", "", "Macro name (required)")
	createCmd.Flags().StringVar(&in.Prompt, "prompt", "", "Prompt sent to the assistant")
	createCmd.Flags().BoolVar(&in.AllowOtherActions, "allow-other-actions", false, "Allow actions beyond the required ones")
	createCmd.Flags().StringSliceVar(&in.RequiredActions, "action", nil, "Required action id (repeatable)")
	_ = createCmd.MarkFlagRequired("name")
	cmd.AddCommand(createCmd)

	var edit client.MacroInput
	editCmd := &cobra.Command{
		Use:   "edit <macro-id>",
		Short: "Edit a macro; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if _, err := a.identity(ctx); err != nil {
				return err
			}
			macros, err := a.session.UserMacros(ctx)
			if err != nil {
				return err
			}
			m, ok := findMacro(macros, args[0])
			if !ok {
				return fmt.Errorf("macro %s: %w", args[0], client.ErrNotFound)
			}

			f := cmd.Flags()
			if f.Changed("name") {
				m.Name = edit.Name
			}
			if f.Changed("prompt") {
				m.Prompt = edit.Prompt
			}
			if f.Changed("allow-other-actions") {
				m.AllowOtherActions = edit.AllowOtherActions
			}
			if f.Changed("action") {
				m.RequiredActions = make([]client.Action, 0, len(edit.RequiredActions))
				for _, id := range edit.RequiredActions {
					m.RequiredActions = append(m.RequiredActions, client.Action{ID: id})
				}
			}

			updated, err := a.session.EditMacro(ctx, m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Macro updated: %s - %s\n", updated.ID, updated.Name)
			return nil
		},
	}
	editCmd.Flags().StringVar(&edit.Name, "name", "", "New name")
	editCmd.Flags().StringVar(&edit.Prompt, "prompt", "", "New prompt")
	editCmd.Flags().BoolVar(&edit.AllowOtherActions, "allow-other-actions", false, "Allow actions beyond the required ones")
	editCmd.Flags().StringSliceVar(&edit.RequiredActions, "action", nil, "Required action id (repeatable; replaces the list)")
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <macro-id>",
		Short: "Delete a macro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			u, err := a.identity(ctx)
			if err != nil {
				return err
			}
			if err := a.session.DeleteMacro(ctx, args[0], u.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Macro deleted: %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func findMacro(macros []client.Macro, id string) (client.Macro, bool) {
	for _, m := range macros {
		if m.ID == id {
			return m, true
		}
	}
	return client.Macro{}, false
}
