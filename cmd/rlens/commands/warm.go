package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/JoshuaHockley/rlens/internal/logger"
	"github.com/JoshuaHockley/rlens/pkg/loader"
	"github.com/JoshuaHockley/rlens/pkg/thumbcache"
)

var warmQuiet bool

var warmCmd = &cobra.Command{
	Use:   "warm [paths...]",
	Short: "Pre-generate thumbnails for a set of images",
	Long: `Generate and cache thumbnails for the given images or directories,
so later gallery browsing serves them straight from the cache.

Examples:
  rlens warm ~/pictures
  rlens warm --quiet ~/pictures/a.png ~/pictures/b.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWarm,
}

func init() {
	warmCmd.Flags().BoolVarP(&warmQuiet, "quiet", "q", false, "suppress the per-image report")
}

func runWarm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	paths, err := collectImages(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found under %v", args)
	}

	store, err := thumbcache.New(cfg.Thumbnails.Dir, cfg.Thumbnails.MaxCacheSize, nil)
	if err != nil {
		return err
	}

	requests := make(chan loader.Request, 1)
	signals := make(chan loader.Signal, 1)
	worker := loader.NewWorker(loader.Options{
		Cache:         store,
		ThumbnailSize: cfg.Thumbnails.Size,
		Save:          true,
	}, requests, signals)
	go worker.Run()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Image", "Status", "Size", "Time"})
	table.SetBorder(false)

	var failures int
	next, completed := 0, 0
	for completed < len(paths) {
		sig := <-signals
		if sig.Ready {
			if next == len(paths) {
				continue
			}
			requests <- loader.Request{
				Kind:  loader.KindThumbnail,
				Index: next,
				Path:  paths[next],
			}
			next++
			continue
		}
		completed++

		res := sig.Result
		if res.Err != nil {
			failures++
			table.Append([]string{res.Path, "failed", "-", "-"})
			continue
		}
		w, h := res.Frame.Size()
		table.Append([]string{
			res.Path,
			"ok",
			fmt.Sprintf("%dx%d", w, h),
			res.Elapsed.Round(time.Millisecond).String(),
		})
	}
	close(requests)
	for range signals {
		// Drain the final readiness signal until the worker exits.
	}

	if !warmQuiet {
		table.Render()
	}
	logger.Info("thumbnail warm complete",
		"images", len(paths), "failures", failures)

	if failures > 0 {
		return fmt.Errorf("%d of %d images failed", failures, len(paths))
	}
	return nil
}
