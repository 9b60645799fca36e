package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/jsonl"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newReplayCmd(a *app) *cobra.Command {
	var (
		out      string
		baseline string
		jobs     int
	)
	cmd := &cobra.Command{
		Use:   "replay <corpus.jsonl>",
		Short: "Detect and render a captured corpus, writing a JSONL report",
		Long: `Replay loads a JSONL corpus of captured blocks ("-" reads stdin), detects and
renders each block in parallel and writes one detection record per block.
With --baseline, records whose format changed from a previous report are
logged as warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			blocks, err := a.Loader.Load(args[0])
			if err != nil {
				return fmt.Errorf("load corpus: %w", err)
			}
			records, err := a.replay(cmd.Context(), blocks, jobs)
			if err != nil {
				return err
			}

			if out != "" {
				if err := a.Store.Save(out, records); err != nil {
					return fmt.Errorf("save report: %w", err)
				}
			} else {
				w := jsonl.NewWriter(a.Stdout)
				for _, rec := range records {
					if err := w.Write(rec); err != nil {
						return err
					}
				}
			}

			if baseline != "" {
				prev, err := a.Store.Load(baseline)
				if err != nil {
					return fmt.Errorf("load baseline: %w", err)
				}
				for _, c := range compare(prev, records) {
					logger.Warn("detection changed", "index", c.index, "was", c.was, "now", c.now)
				}
			}

			detected := 0
			for _, rec := range records {
				if rec.FormatID != "" {
					detected++
				}
			}
			prog.done(fmt.Sprintf("Replayed %d blocks, %d detected", len(records), detected))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&baseline, "baseline", "", "previous report to compare detections against")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of blocks processed in parallel")
	return cmd
}

// replay detects and renders every block. Render failures are recorded, not returned.
func (a *app) replay(ctx context.Context, blocks []prettify.ContentBlock, jobs int) ([]prettify.DetectionRecord, error) {
	cfg := a.rendererConfig()
	records := make([]prettify.DetectionRecord, len(blocks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, block := range blocks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, ok := a.registry.Resolve(block)
			rec := record(i, block, res, ok)
			if ok {
				out, err := a.registry.Render(ctx, res.FormatID, block, cfg)
				if err != nil {
					rec.Error = err.Error()
				} else {
					rec.Rendered = len(out.Lines)
				}
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

type change struct {
	index    int
	was, now string
}

// compare pairs records by index and returns those whose format differs.
func compare(prev, cur []prettify.DetectionRecord) []change {
	byIndex := make(map[int]string, len(prev))
	for _, rec := range prev {
		byIndex[rec.Index] = rec.FormatID
	}
	var changes []change
	for _, rec := range cur {
		was, ok := byIndex[rec.Index]
		if !ok || was == rec.FormatID {
			continue
		}
		changes = append(changes, change{index: rec.Index, was: was, now: rec.FormatID})
	}
	return changes
}
