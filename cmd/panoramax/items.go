package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
	"github.com/robert-malhotra/go-panoramax-client/pkg/viewer"
)

func newItemsCommand() *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "Work with the pictures of a collection",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Fetch a picture by collection and ID",
				ArgsUsage: "<collection-id> <item-id>",
				Flags:     []cli.Flag{newFormatFlag()},
				Action:    getItemAction,
			},
			{
				Name:      "list",
				Usage:     "List the pictures of a collection in sequence order",
				ArgsUsage: "<collection-id>",
				Flags:     []cli.Flag{newFormatFlag()},
				Action:    listItemsAction,
			},
		},
	}
}

func getItemAction(ctx context.Context, cmd *cli.Command) error {
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

	if cmd.String(flagFormat) == formatSTAC {
		return printJSON(s.out, toSTACItem(img))
	}
	return printJSON(s.out, newItemSummary(s.entry(img)))
}

func listItemsAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: collection id")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	col, err := s.collection(ctx, cmd.Args().Get(0))
	if err != nil {
		return err
	}

	marshal := func(img *panoramax.Image) ([]byte, error) {
		return json.Marshal(newItemSummary(s.entry(img)))
	}
	if cmd.String(flagFormat) == formatSTAC {
		marshal = func(img *panoramax.Image) ([]byte, error) {
			return json.Marshal(toSTACItem(img))
		}
	}

	entries, err := collectForCLI(col.All(), marshal)
	if err != nil {
		return err
	}
	return printJSONArray(s.out, entries)
}

func (s *session) item(ctx context.Context, collectionID, itemID string) (*panoramax.Image, error) {
	img, err := s.cache.Item(ctx, s.endpoint, collectionID, itemID)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("item %q of collection %q is not available from %s", itemID, collectionID, s.endpoint)
	}
	return img, nil
}

func (s *session) entry(img *panoramax.Image) *viewer.Entry {
	return viewer.New(img, s.cache, s.endpoint, viewer.WithLogger(s.logger))
}
