package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestInfoCommand_EmbeddedSite(t *testing.T) {
	tmpDir := t.TempDir()
	outputDir := filepath.Join(tmpDir, "out")

	_ = os.MkdirAll(filepath.Join(outputDir, "about"), 0755)
	_ = os.WriteFile(filepath.Join(outputDir, "about", "index.html"), []byte("<html>cached</html>"), 0644)
	_ = os.WriteFile(filepath.Join(outputDir, "about", "index.html.gz"), []byte("gz"), 0644)

	configPath := writeConfig(t, "outputDir: "+outputDir+"\ncache: true\ndebugHeaders: true\nsiteName: Acme\nsessionSecret: s3cret\n")

	app := &cli.App{Commands: []*cli.Command{InfoCommand}}

	var runErr error
	output := captureOutput(func() {
		runErr = app.Run([]string{"socialtech", "info", "--config", configPath})
	})

	if runErr != nil {
		t.Fatalf("expected no error, got: %v", runErr)
	}

	assertContains := func(content string) {
		if !strings.Contains(output, content) {
			t.Errorf("expected output to contain %q\n%s", content, output)
		}
	}

	assertContains("🏷️  Site Name: Acme")
	assertContains("📂 Site Directory: (embedded)")
	assertContains("📁 Output Directory: " + outputDir)
	assertContains("🔁 Cache Enabled: true")
	assertContains("🔁 Debug Headers Enabled: true")
	assertContains("🔐 Session Secret Set: true")
	assertContains("🗂️  Routes Found: 7")
	assertContains("/projects")
	assertContains("📦 Components Found: 5")
	assertContains("💾 Cached Pages: 1")
}

func TestInfoCommand_SiteDirOnDisk(t *testing.T) {
	siteDir := t.TempDir()
	_ = os.MkdirAll(filepath.Join(siteDir, "components"), 0755)
	_ = os.WriteFile(filepath.Join(siteDir, "components", "header.html"), []byte(`<header>Hi</header>`), 0644)
	_ = os.MkdirAll(filepath.Join(siteDir, "routes", "home"), 0755)
	_ = os.WriteFile(filepath.Join(siteDir, "routes", "home", "index.html"), []byte(`home`), 0644)

	configPath := writeConfig(t, "outputDir: "+filepath.Join(siteDir, "missing")+"\nsiteDir: "+siteDir+"\n")

	app := &cli.App{Commands: []*cli.Command{InfoCommand}}

	var runErr error
	output := captureOutput(func() {
		runErr = app.Run([]string{"socialtech", "info", "-c", configPath})
	})

	if runErr != nil {
		t.Fatalf("expected no error, got: %v", runErr)
	}
	for _, want := range []string{
		"📂 Site Directory: " + siteDir,
		"🗂️  Routes Found: 1",
		"📦 Components Found: 1",
		"💾 Cached Pages: 0",
		"🔐 Session Secret Set: false",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q\n%s", want, output)
		}
	}
}
