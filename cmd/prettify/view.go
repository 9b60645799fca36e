package main

import (
	"github.com/fwojciec/prettify"
	"github.com/spf13/cobra"
)

func newViewCmd(a *app) *cobra.Command {
	var format, command string
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Open the input in an interactive viewer",
		Long: `View renders the input and opens it in a full-screen viewer. Press r or tab
to switch between the rendered and raw views, y to copy the source and q to
quit. Input that matches no format is shown as plain text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := a.readInputs(args)
			if err != nil {
				return err
			}
			block := prettify.NewContentBlock(inputs[0].text, command)
			res, ok, err := a.resolve(block, format)
			if err != nil {
				return err
			}
			rendered := plain(block)
			if ok {
				out, err := a.registry.Render(cmd.Context(), res.FormatID, block, a.rendererConfig())
				if err != nil {
					loggerFromContext(cmd.Context()).Warn("render failed, showing raw", "format", res.FormatID, "err", err)
				} else {
					rendered = out
				}
			}
			return a.NewViewer(a.theme).View(cmd.Context(), block, rendered)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "skip detection and render as this format")
	cmd.Flags().StringVar(&command, "command", "", "command that produced the input, used as detection context")
	return cmd
}
