package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-panoramax-client/internal/config"
	"github.com/robert-malhotra/go-panoramax-client/internal/logging"
	"github.com/robert-malhotra/go-panoramax-client/pkg/auth"
	"github.com/robert-malhotra/go-panoramax-client/pkg/cache"
	"github.com/robert-malhotra/go-panoramax-client/pkg/client"
)

// session holds what one command invocation needs: the resolved endpoint,
// the client and the cache in front of it.
type session struct {
	endpoint string
	logger   *slog.Logger
	client   *client.Client
	cache    *cache.Cache
	out      io.Writer
	errOut   io.Writer
}

// newSession merges the config file with the global flags. Flags win.
func newSession(cmd *cli.Command) (*session, error) {
	cfg, err := config.Load(cmd.String(flagConfig))
	if err != nil {
		return nil, err
	}

	endpoint := cfg.API.BaseURL
	if cmd.IsSet(flagURL) {
		endpoint = strings.TrimRight(strings.TrimSpace(cmd.String(flagURL)), "/")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("flag --url is required")
	}

	timeout := cfg.RequestTimeout()
	if cmd.IsSet(flagTimeout) {
		timeout = cmd.Duration(flagTimeout)
	}
	maxWait := cfg.MaxBackoff()
	if cmd.IsSet(flagMaxBackoff) {
		maxWait = cmd.Duration(flagMaxBackoff)
	}
	level := cfg.Logging.Level
	if cmd.IsSet(flagLogLevel) {
		level = cmd.String(flagLogLevel)
	}
	token := cfg.API.Token
	if cmd.IsSet(flagToken) {
		token = cmd.String(flagToken)
	}

	root := cmd.Root()
	out, errOut := root.Writer, root.ErrWriter
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Logging.Format, Writer: errOut})
	if err != nil {
		return nil, err
	}

	c := client.NewClient(
		client.WithTimeout(timeout),
		client.WithMaxWait(maxWait),
		client.WithLogger(logger),
		client.WithMiddleware(auth.BearerMiddleware(token, auth.ScopeFor(endpoint))),
	)

	return &session{
		endpoint: endpoint,
		logger:   logger,
		client:   c,
		cache:    cache.New(c, cache.WithLogger(logger)),
		out:      out,
		errOut:   errOut,
	}, nil
}

func (s *session) Close() error {
	return s.cache.Close()
}
