package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-panoramax-client/pkg/client"
	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
)

type downloadSummary struct {
	ID    string `json:"id"`
	Asset string `json:"asset"`
	Path  string `json:"path"`
}

type prefetchSummary struct {
	Collection string    `json:"collection"`
	Requested  int       `json:"requested"`
	Cached     int       `json:"cached"`
	Images     tierStats `json:"images"`
}

type tierStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

func newImagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "images",
		Usage: "Download picture files",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Download the best variant of a picture",
				ArgsUsage: "<collection-id> <item-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "destination file (defaults to <item-id> plus the asset extension)",
					},
					&cli.StringFlag{
						Name:  "asset",
						Usage: "asset name to download instead of the best one (hd, sd, thumb)",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "do not report progress",
					},
				},
				Action: getImageAction,
			},
			{
				Name:      "prefetch",
				Usage:     "Download pictures of a collection into memory and report cache counters",
				ArgsUsage: "<collection-id> [item-id...]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "pictures to prefetch when no item ids are given (0 means all)",
					},
				},
				Action: prefetchImagesAction,
			},
		},
	}
}

func getImageAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("expected 2 arguments: collection id and item id")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	img, err := s.item(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return err
	}

	name, link, err := pickAsset(img, cmd.String("asset"))
	if err != nil {
		return err
	}

	dest := cmd.String("out")
	if dest == "" {
		dest = img.ID + path.Ext(link.Href.Path)
	}

	var progress client.ProgressFunc
	if !cmd.Bool("quiet") {
		progress = progressPrinter(s.errOut)
	}
	if err := s.client.DownloadImage(ctx, s.endpoint, link, dest, progress); err != nil {
		return fmt.Errorf("download %s: %w", img.ID, err)
	}
	if progress != nil {
		fmt.Fprintln(s.errOut)
	}

	return printJSON(s.out, downloadSummary{ID: img.ID, Asset: name, Path: dest})
}

func prefetchImagesAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("expected at least 1 argument: collection id")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	collectionID := cmd.Args().Get(0)
	ids := cmd.Args().Slice()[1:]
	if len(ids) == 0 {
		col, err := s.collection(ctx, collectionID)
		if err != nil {
			return err
		}
		for _, img := range col.All() {
			ids = append(ids, img.ID)
		}
		if limit := int(cmd.Int("limit")); limit > 0 && limit < len(ids) {
			ids = ids[:limit]
		}
	}

	if err := s.cache.Prefetch(ctx, s.endpoint, collectionID, ids...); err != nil {
		return err
	}

	stats := s.cache.Stats().Images
	return printJSON(s.out, prefetchSummary{
		Collection: collectionID,
		Requested:  len(ids),
		Cached:     stats.Entries,
		Images:     tierStats{Hits: stats.Hits, Misses: stats.Misses, Entries: stats.Entries},
	})
}

func pickAsset(img *panoramax.Image, name string) (string, panoramax.Link, error) {
	if name != "" {
		link, ok := img.Assets[name]
		if !ok || link.Href == nil {
			return "", panoramax.Link{}, fmt.Errorf("item %q has no %q asset", img.ID, name)
		}
		return name, link, nil
	}
	link, ok := img.BestAsset()
	if !ok || link.Href == nil {
		return "", panoramax.Link{}, fmt.Errorf("item %q has no downloadable asset", img.ID)
	}
	for n, l := range img.Assets {
		if l.Equal(link) {
			name = n
			break
		}
	}
	return name, link, nil
}

func progressPrinter(w io.Writer) client.ProgressFunc {
	if w == nil {
		w = os.Stderr
	}
	return func(downloaded, total int64) {
		if total > 0 {
			fmt.Fprintf(w, "\r%d / %d bytes (%.0f%%)", downloaded, total, float64(downloaded)*100/float64(total))
			return
		}
		fmt.Fprintf(w, "\r%d bytes", downloaded)
	}
}
