package main

import (
	"github.com/spf13/cobra"

	"shotlist/internal/connectors"
	"shotlist/internal/listener"
)

func newListenCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Poll the inbox, process new documents and export results",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			svc := listener.NewService(db, ctx.config, connectors.NewDirSource(ctx.config.InboxDir), ctx.processor(db))
			if once {
				return svc.RunCycle(cmd.Context())
			}
			return svc.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single cycle and exit")
	return cmd
}
