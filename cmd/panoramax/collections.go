package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
)

func newCollectionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "collections",
		Usage: "Work with Panoramax collections (sequences)",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Fetch every page of a collection",
				ArgsUsage: "<collection-id>",
				Flags:     []cli.Flag{newFormatFlag()},
				Action:    getCollectionAction,
			},
		},
	}
}

func getCollectionAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: collection id")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	id := cmd.Args().Get(0)
	col, err := s.collection(ctx, id)
	if err != nil {
		return err
	}

	if cmd.String(flagFormat) == formatSTAC {
		return printJSON(s.out, toSTACCollection(id, col))
	}
	return printJSON(s.out, newCollectionSummary(id, col))
}

// collection resolves a collection through the cache and turns an absent
// result into an error for the command line.
func (s *session) collection(ctx context.Context, id string) (*panoramax.Collection, error) {
	col, err := s.cache.Collection(ctx, s.endpoint, id)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, fmt.Errorf("collection %q is not available from %s", id, s.endpoint)
	}
	return col, nil
}
