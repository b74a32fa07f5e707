package main

import (
	"log"
	"os"

	sitecli "github.com/socialtech/site/cli"
	clilib "github.com/urfave/cli/v2"
)

func runApp(args []string) error {
	app := &clilib.App{
		Name:  "socialtech",
		Usage: "Serve and maintain the SocialTech marketing site",
		Commands: []*clilib.Command{
			sitecli.InitCommand,
			sitecli.DevCommand,
			sitecli.ProdCommand,
			sitecli.CleanCommand,
			sitecli.CheckCommand,
			sitecli.InfoCommand,
		},
	}
	return app.Run(args)
}

func main() {
	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}
