package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/socialtech/site/core"
	"github.com/urfave/cli/v2"
)

const staticTarget = "static"

var CleanCommand = &cli.Command{
	Name:      "clean",
	Usage:     "Delete cached pages and minified assets",
	ArgsUsage: "[page...] (home, about, services, projects, static; default: everything)",
	Flags:     []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))

		if c.Args().Len() == 0 {
			return cleanDir(config.OutputDir)
		}

		targets := make([]string, 0, c.Args().Len())
		for _, arg := range c.Args().Slice() {
			name, err := cleanTarget(arg)
			if err != nil {
				return err
			}
			targets = append(targets, filepath.Join(config.OutputDir, name))
		}

		for _, target := range targets {
			if err := cleanDir(target); err != nil {
				return err
			}
		}
		return nil
	},
}

// cleanTarget maps a page name or path to its directory under outputDir.
// "/" and "home" are the home page; "static" holds the minified assets.
func cleanTarget(arg string) (string, error) {
	key := strings.Trim(arg, "/")
	if key == "" {
		key = "home"
	}
	if key == staticTarget {
		return staticTarget, nil
	}

	for _, page := range core.Pages {
		if key == page.Name || key == strings.Trim(page.Path, "/") {
			return page.Name, nil
		}
	}
	return "", fmt.Errorf("unknown page: %s", arg)
}

func cleanDir(target string) error {
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("🧼 Nothing to clean:", target)
			return nil
		}
		return fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", target)
	}

	fmt.Println("🧹 Cleaning:", target)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}

	fmt.Println("✅ Done.")
	return nil
}
