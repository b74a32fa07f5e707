package cli

import (
	"fmt"

	"github.com/socialtech/site/core"
	"github.com/urfave/cli/v2"
)

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print configuration, routes and cache summary",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))

		siteDir := config.SiteDir
		if siteDir == "" {
			siteDir = "(embedded)"
		}

		fmt.Println("🏷️  Site Name:", config.SiteName)
		fmt.Println("📂 Site Directory:", siteDir)
		fmt.Println("📁 Output Directory:", config.OutputDir)
		fmt.Println("🔁 Cache Enabled:", config.CacheEnabled)
		fmt.Println("🔁 Debug Headers Enabled:", config.DebugHeaders)
		fmt.Println("🔐 Session Secret Set:", config.SessionSecret != "")
		fmt.Println()

		renderer := core.NewRenderer(core.SiteFS(config), nil, false)
		components, err := renderer.Components()
		if err != nil {
			return err
		}

		fmt.Println("🗂️  Routes Found:", len(renderer.Pages()))
		for _, page := range core.Pages {
			fmt.Printf("   %-10s %s\n", page.Name, page.Path)
		}
		fmt.Println("📦 Components Found:", len(components))
		fmt.Println("💾 Cached Pages:", core.CachedPages(config))

		return nil
	},
}
