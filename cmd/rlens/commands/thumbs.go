package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/JoshuaHockley/rlens/internal/bytesize"
	"github.com/JoshuaHockley/rlens/pkg/thumbcache"
)

var pruneMaxSize string

var thumbsCmd = &cobra.Command{
	Use:   "thumbs",
	Short: "Inspect and manage the thumbnail cache",
}

var thumbsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached thumbnails",
	RunE:  runThumbsList,
}

var thumbsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old thumbnails until the cache fits its size cap",
	Long: `Remove the oldest cached thumbnails until the cache fits within the
configured size cap, or the cap given with --max-size.

Examples:
  rlens thumbs prune
  rlens thumbs prune --max-size 100MiB`,
	RunE: runThumbsPrune,
}

func init() {
	thumbsPruneCmd.Flags().StringVar(&pruneMaxSize, "max-size", "", "prune to this size instead of the configured cap")
	thumbsCmd.AddCommand(thumbsListCmd)
	thumbsCmd.AddCommand(thumbsPruneCmd)
}

func openStore() (*thumbcache.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return thumbcache.New(cfg.Thumbnails.Dir, cfg.Thumbnails.MaxCacheSize, nil)
}

func runThumbsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	artifacts, err := store.List()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Size", "Created"})
	table.SetBorder(false)

	var total int64
	for _, a := range artifacts {
		key := a.Key
		if len(key) > 12 {
			key = key[:12]
		}
		table.Append([]string{
			key,
			bytesize.ByteSize(a.Size).String(),
			a.ModTime.Format("2006-01-02 15:04:05"),
		})
		total += a.Size
	}
	table.Render()

	fmt.Printf("\n%d thumbnails, %s total, in %s\n",
		len(artifacts), bytesize.ByteSize(total), store.Dir())
	return nil
}

func runThumbsPrune(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	var freed int64
	if pruneMaxSize != "" {
		limit, err := bytesize.Parse(pruneMaxSize)
		if err != nil {
			return fmt.Errorf("invalid --max-size: %w", err)
		}
		freed, err = store.PruneTo(limit)
		if err != nil {
			return err
		}
	} else {
		freed, err = store.Prune()
		if err != nil {
			return err
		}
	}

	fmt.Printf("freed %s\n", bytesize.ByteSize(freed))
	return nil
}
