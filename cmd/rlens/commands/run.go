package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JoshuaHockley/rlens/internal/logger"
	"github.com/JoshuaHockley/rlens/pkg/config"
	"github.com/JoshuaHockley/rlens/pkg/gallery"
	"github.com/JoshuaHockley/rlens/pkg/loader"
	"github.com/JoshuaHockley/rlens/pkg/metrics"
	"github.com/JoshuaHockley/rlens/pkg/pipeline"
	"github.com/JoshuaHockley/rlens/pkg/thumbcache"
)

var (
	runGallery bool
	runCursor  int
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Run the loading pipeline over a set of images",
	Long: `Run the loading pipeline over the given images or directories.

The pipeline preloads full images around the cursor, generates
thumbnails for the gallery grid, and keeps the on-disk cache warm,
until interrupted.

Examples:
  # Preload around the first image of a directory
  rlens run ~/pictures

  # Start on a specific image in gallery mode
  rlens run --cursor 12 --gallery ~/pictures`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runGallery, "gallery", false, "start in gallery mode")
	runCmd.Flags().IntVar(&runCursor, "cursor", 0, "initial cursor index")
}

func runRun(cmd *cobra.Command, args []string) error {
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

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go func() {
			if err := metrics.Serve(cfg.Metrics.Listen); err != nil {
				logger.Error("metrics server failed", logger.KeyError, err)
			}
		}()
	}

	store, err := thumbcache.New(
		cfg.Thumbnails.Dir,
		cfg.Thumbnails.MaxCacheSize,
		metrics.NewCacheMetrics(),
	)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Options{
		Paths:            paths,
		Consumer:         &headlessConsumer{},
		Cache:            store,
		ThumbnailSize:    cfg.Thumbnails.Size,
		SaveThumbnails:   cfg.Thumbnails.Save,
		PreloadForward:   cfg.Preload.Forward,
		PreloadBackward:  cfg.Preload.Backward,
		TileWidth:        cfg.Gallery.TileWidth,
		HeightWidthRatio: cfg.Gallery.HeightWidthRatio,
		Watch:            cfg.Watch,
		Metrics:          metrics.NewPipelineMetrics(),
	})
	if err != nil {
		return err
	}

	p.Start()
	p.SetViewport(defaultViewport(cfg))
	if runCursor > 0 {
		p.SetCursor(runCursor)
	}
	if runGallery {
		p.SetMode(pipeline.ModeGallery)
	}

	logger.Info("pipeline running", "images", len(paths))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	return p.Stop(cfg.ShutdownTimeout)
}

// defaultViewport sizes the virtual grid viewport for headless runs:
// four columns of configured tiles, two rows.
func defaultViewport(cfg *config.Config) gallery.Size {
	return gallery.Size{
		Width:  cfg.Gallery.TileWidth * 4,
		Height: cfg.Gallery.TileWidth * cfg.Gallery.HeightWidthRatio * 2,
	}
}

// headlessConsumer holds decoded frames in memory without a renderer.
type headlessConsumer struct{}

type memTexture struct {
	w, h int
}

func (t *memTexture) Size() (int, int) { return t.w, t.h }
func (t *memTexture) Release()         {}

func (c *headlessConsumer) Bind(frame *loader.Frame) (gallery.Texture, error) {
	w, h := frame.Size()
	return &memTexture{w: w, h: h}, nil
}

func (c *headlessConsumer) Invalidate() {}
