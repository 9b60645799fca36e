package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/prettify"
	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var format, command string
	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render each input in its detected format",
		Long: `Render reads stdin or each file as one block, detects its format and prints
it styled. Blocks that match no format are printed unchanged. A block whose
detected format fails to render is printed unchanged with a warning.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := a.readInputs(args)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			p := a.printer(a.Stdout)
			cfg := a.rendererConfig()
			for _, in := range inputs {
				block := prettify.NewContentBlock(in.text, command)
				res, ok, err := a.resolve(block, format)
				if err != nil {
					return err
				}
				if !ok {
					logger.Debug("no format detected", "input", in.name)
					if err := writeRaw(a, block); err != nil {
						return err
					}
					continue
				}
				out, err := a.registry.Render(cmd.Context(), res.FormatID, block, cfg)
				if err != nil {
					if format != "" {
						return fmt.Errorf("%s: %w", in.name, err)
					}
					logger.Warn("render failed, printing as-is", "input", in.name, "format", res.FormatID, "err", err)
					if err := writeRaw(a, block); err != nil {
						return err
					}
					continue
				}
				logger.Debug("rendered", "input", in.name, "format", res.FormatID, "confidence", res.Confidence, "source", res.Source, "lines", len(out.Lines))
				if err := p.Fprint(a.Stdout, out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "skip detection and render as this format")
	cmd.Flags().StringVar(&command, "command", "", "command that produced the input, used as detection context")
	return cmd
}

func writeRaw(a *app, block prettify.ContentBlock) error {
	if len(block.Lines) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(a.Stdout, strings.Join(block.Lines, "\n"))
	return err
}
