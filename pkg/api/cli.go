package api

import (
	"context"
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/departures-rss/pkg/config"
	"github.com/travigo/departures-rss/pkg/feed"
	"github.com/travigo/departures-rss/pkg/redis_client"
	"github.com/travigo/departures-rss/pkg/transportrest"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run",
			Usage: "run the RSS web server",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "listen",
					Usage: "listen target for the web server (overrides config)",
				},
			},
			Action: func(c *cli.Context) error {
				cfg, client, err := setup(c)
				if err != nil {
					return err
				}

				listen := cfg.Listen
				if c.String("listen") != "" {
					listen = c.String("listen")
				}

				log.Info().
					Str("listen", listen).
					Str("stop", cfg.StopID).
					Str("api", cfg.APIURL).
					Msg("Starting departures RSS server")

				return SetupServer(listen, cfg.StopName, feed.NewBuilder(cfg, client))
			},
		},
		{
			Name:  "print",
			Usage: "build the feed once and write it to stdout",
			Action: func(c *cli.Context) error {
				cfg, client, err := setup(c)
				if err != nil {
					return err
				}

				_, err = fmt.Fprint(os.Stdout, feed.NewBuilder(cfg, client).Build(c.Context))
				return err
			},
		},
		{
			Name:  "departures",
			Usage: "fetch the departures once and dump the decoded records",
			Action: func(c *cli.Context) error {
				cfg, client, err := setup(c)
				if err != nil {
					return err
				}

				departures, err := client.Departures(c.Context, cfg.Results, cfg.WindowMinutes)
				if err != nil {
					return err
				}

				pretty.Println(departures)

				return nil
			},
		},
	}
}

func setup(c *cli.Context) (*config.Config, *transportrest.Client, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	var opts []transportrest.Option

	if cfg.Redis.Enabled() {
		redisClient, err := redis_client.Connect(context.Background(), cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}

		opts = append(opts, transportrest.WithStopoverCache(
			transportrest.NewRedisStopoverCache(redisClient, cfg.Redis.StopoverCacheTTL),
		))
	}

	return cfg, transportrest.NewClient(cfg, opts...), nil
}
