package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newRespondCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "respond <recording>",
		Short: "Send a recording to the assistant and save the spoken reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if _, err := a.identity(ctx); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			reply, err := a.session.Respond(ctx, f, filepath.Base(args[0]))
			if err != nil {
				return err
			}

			if out != "" && out != "-" {
				if err := os.WriteFile(out, reply.Data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Reply saved: %s (%s, %d bytes)\n", out, reply.ContentType, len(reply.Data))
				return nil
			}
			_, err = cmd.OutOrStdout().Write(reply.Data)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "reply.wav", "Where to write the reply; - for stdout")
	return cmd
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <recording>",
		Short: "Store a recording without processing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if _, err := a.identity(ctx); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			up, err := a.session.UploadAudio(ctx, f, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded: %s -> %s\n", up.Filename, up.Path)
			return nil
		},
	}
}
