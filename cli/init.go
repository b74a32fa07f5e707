package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/socialtech/site/web"
	"github.com/urfave/cli/v2"
)

var siteFS fs.FS = web.FS

var InitCommand = &cli.Command{
	Name:      "init",
	Usage:     "Write the embedded templates and assets to disk for editing",
	ArgsUsage: "[directory (default: site)]",
	Action: func(c *cli.Context) error {
		targetDir := "site"
		if c.Args().Len() > 0 {
			targetDir = c.Args().Get(0)
		}

		if entries, err := os.ReadDir(targetDir); err == nil && len(entries) > 0 {
			return fmt.Errorf("refusing to overwrite non-empty directory: %s", targetDir)
		}

		fmt.Println("🚀 Exporting site files to:", targetDir)

		if err := copyEmbeddedDir(siteFS, ".", targetDir); err != nil {
			return fmt.Errorf("failed to export site: %w", err)
		}

		fmt.Println("✅ Site files exported.")
		fmt.Printf("▶  Set siteDir: %s in your config, then run: socialtech dev\n", targetDir)
		return nil
	},
}

func copyEmbeddedDir(source fs.FS, sourceDir string, targetDir string) error {
	return fs.WalkDir(source, sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return os.MkdirAll(targetDir, os.ModePerm)
		}

		targetPath := filepath.Join(targetDir, rel)

		if d.IsDir() {
			return os.MkdirAll(targetPath, os.ModePerm)
		}

		data, err := fs.ReadFile(source, path)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), os.ModePerm); err != nil {
			return err
		}

		return os.WriteFile(targetPath, data, 0644)
	})
}
