package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/socialtech/site/web"
	"github.com/urfave/cli/v2"
)

func TestCopyEmbeddedDir(t *testing.T) {
	tmpDir := t.TempDir()

	err := copyEmbeddedDir(web.FS, ".", tmpDir)
	if err != nil {
		t.Fatalf("unexpected error copying embedded dir: %v", err)
	}

	err = fs.WalkDir(web.FS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		dest := filepath.Join(tmpDir, filepath.FromSlash(path))
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("expected file %s to exist, but got error: %v", path, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected walk error: %v", err)
	}
}

func TestCopyEmbeddedDir_Subtree(t *testing.T) {
	tmpDir := t.TempDir()
	source := fstest.MapFS{
		"routes/home/index.html": {Data: []byte("home")},
		"public/robots.txt":      {Data: []byte("robots")},
	}

	if err := copyEmbeddedDir(source, "routes", tmpDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "home", "index.html"))
	if err != nil || string(data) != "home" {
		t.Errorf("expected home/index.html to be copied, got %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "robots.txt")); !os.IsNotExist(err) {
		t.Error("expected files outside the subtree to be skipped")
	}
}

func TestInitCommand_RunSuccess(t *testing.T) {
	targetDir := filepath.Join(t.TempDir(), "mysite")

	app := &cli.App{
		Commands: []*cli.Command{InitCommand},
	}

	var err error
	output := captureOutput(func() {
		err = app.Run([]string{"cmd", "init", targetDir})
	})
	if err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	expectedFiles := []string{
		"layouts/base.html",
		"components/nav.html",
		"routes/home/index.html",
		"routes/join/index.html",
		"public/css/site.css",
		"public/robots.txt",
	}

	for _, f := range expectedFiles {
		if _, err := os.Stat(filepath.Join(targetDir, f)); err != nil {
			t.Errorf("expected file %s to exist, but got error: %v", f, err)
		}
	}

	if !strings.Contains(output, "siteDir: "+targetDir) {
		t.Errorf("expected config hint in output, got %q", output)
	}
}

func TestInitCommand_DefaultDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	_ = os.Chdir(tmpDir)

	original := siteFS
	siteFS = fstest.MapFS{"routes/home/index.html": {Data: []byte("home")}}
	defer func() { siteFS = original }()

	app := &cli.App{Commands: []*cli.Command{InitCommand}}

	captureOutput(func() {
		if err := app.Run([]string{"cmd", "init"}); err != nil {
			t.Errorf("init command failed: %v", err)
		}
	})

	if _, err := os.Stat(filepath.Join(tmpDir, "site", "routes", "home", "index.html")); err != nil {
		t.Errorf("expected export into ./site: %v", err)
	}
}

func TestInitCommand_RefusesNonEmptyDirectory(t *testing.T) {
	targetDir := t.TempDir()
	keep := filepath.Join(targetDir, "keep.txt")
	_ = os.WriteFile(keep, []byte("mine"), 0644)

	app := &cli.App{Commands: []*cli.Command{InitCommand}}

	err := app.Run([]string{"cmd", "init", targetDir})
	if err == nil || !strings.Contains(err.Error(), "refusing to overwrite") {
		t.Fatalf("expected refusal, got: %v", err)
	}

	if _, err := os.Stat(filepath.Join(targetDir, "routes")); !os.IsNotExist(err) {
		t.Error("expected nothing to be written")
	}
}
