package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

type liveSummary struct {
	Endpoint   string     `json:"endpoint"`
	Live       bool       `json:"live"`
	Status     string     `json:"status"`
	RetryCount int        `json:"retry_count"`
	LastCheck  *time.Time `json:"last_check,omitempty"`
}

func newLiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "live",
		Usage: "Check whether the endpoint is reachable",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "probe even inside the backoff window",
			},
		},
		Action: liveAction,
	}
}

func liveAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 0 {
		return fmt.Errorf("expected no arguments")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	summary := liveSummary{
		Endpoint: s.endpoint,
		Live:     s.client.CheckLive(ctx, s.endpoint, cmd.Bool("force")),
	}
	if state, ok := s.client.Liveness().State(s.endpoint); ok {
		summary.Status = state.Status.String()
		summary.RetryCount = state.RetryCount
		if !state.LastCheck.IsZero() {
			last := state.LastCheck
			summary.LastCheck = &last
		}
	}
	return printJSON(s.out, summary)
}
