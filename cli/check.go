package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/socialtech/site/core"
	"github.com/urfave/cli/v2"
)

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Parse and execute every page template with its layout and components",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))
		site := core.SiteFS(config)

		assets := core.NewAssets("dev", core.PublicFS(site), config.OutputDir)
		renderer := core.NewRenderer(site, core.TemplateFuncs(assets), true)

		pages := renderer.Pages()
		if len(pages) == 0 {
			return cli.Exit("no pages found under routes/", 1)
		}

		var failed bool
		for _, page := range pages {
			data := core.PageData{
				Title:    page,
				Page:     page,
				SiteName: config.SiteName,
				Year:     time.Now().Year(),
				Messages: []core.Message{{Level: core.LevelSuccess, Form: core.FormContact, Name: "check"}},
			}

			if err := renderer.Render(io.Discard, page, data); err != nil {
				failed = true
				fmt.Println(color.New(color.FgHiRed).Sprintf("❌ %s → %v", page, err))
				continue
			}
			fmt.Println(color.New(color.FgHiGreen).Sprintf("✅ %s", page))
		}

		if failed {
			return cli.Exit("some templates failed to compile", 1)
		}

		fmt.Println(color.New(color.Bold, color.FgHiGreen).Sprint("✅ All templates validated successfully."))
		return nil
	},
}
