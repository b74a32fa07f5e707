package cli

import (
	site "github.com/socialtech/site"
	"github.com/socialtech/site/core"

	"github.com/urfave/cli/v2"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   core.DefaultConfigPath,
		Usage:   "path to the YAML config file",
	}
}

func portFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Value:   8080,
		Usage:   "port to listen on",
		EnvVars: []string{"PORT"},
	}
}

var DevCommand = &cli.Command{
	Name:  "dev",
	Usage: "Start the site in dev mode (no caching, live reload)",
	Flags: []cli.Flag{configFlag(), portFlag()},
	Action: func(c *cli.Context) error {
		cfg := site.RuntimeConfig{
			Env:         "dev",
			EnableCache: false,
			Port:        c.Int("port"),
			ConfigPath:  c.String("config"),
		}
		site.Start(cfg)
		return nil
	},
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start the site in production mode (page cache on by default)",
	Flags: []cli.Flag{
		configFlag(),
		portFlag(),
		&cli.BoolFlag{Name: "no-cache", Usage: "disable the rendered page cache"},
	},
	Action: func(c *cli.Context) error {
		cfg := site.RuntimeConfig{
			Env:         "prod",
			EnableCache: !c.Bool("no-cache"),
			Port:        c.Int("port"),
			ConfigPath:  c.String("config"),
		}
		site.Start(cfg)
		return nil
	},
}
