package main

import (
	"fmt"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/jsonl"
	"github.com/spf13/cobra"
)

func newDetectCmd(a *app) *cobra.Command {
	var (
		command string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "detect [file...]",
		Short: "Explain how each detector scores the input",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := a.readInputs(args)
			if err != nil {
				return err
			}
			w := jsonl.NewWriter(a.Stdout)
			for i, in := range inputs {
				block := prettify.NewContentBlock(in.text, command)
				res, ok := a.registry.Resolve(block)
				if asJSON {
					if err := w.Write(record(i, block, res, ok)); err != nil {
						return err
					}
					continue
				}
				if len(inputs) > 1 {
					fmt.Fprintf(a.Stdout, "==> %s <==\n", in.name)
				}
				for _, ex := range a.registry.Explain(block) {
					fmt.Fprintln(a.Stdout, ex)
				}
				if ok {
					fmt.Fprintf(a.Stdout, "detected: %s (%.2f)\n", res.FormatID, res.Confidence)
				} else {
					fmt.Fprintf(a.Stdout, "detected: none (threshold %.2f)\n", a.registry.Threshold())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&command, "command", "", "command that produced the input, used as detection context")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON detection record per input")
	return cmd
}
