package cli

import (
	"os"
	"testing"

	site "github.com/socialtech/site"
	"github.com/urfave/cli/v2"
)

var recordedConfig *site.RuntimeConfig

func mockStart(cfg site.RuntimeConfig) {
	recordedConfig = &cfg
}

func withMockStart(t *testing.T) {
	t.Helper()
	original := site.Start
	site.Start = mockStart
	t.Cleanup(func() {
		site.Start = original
		recordedConfig = nil
	})
}

func unsetPort(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
}

func TestDevCommand_UsesDevConfig(t *testing.T) {
	withMockStart(t)
	unsetPort(t)

	app := &cli.App{Commands: []*cli.Command{DevCommand}}

	err := app.Run([]string{"socialtech", "dev"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if recordedConfig == nil {
		t.Fatal("expected Start to be called, but it was not")
	}

	if recordedConfig.Env != "dev" || recordedConfig.EnableCache != false || recordedConfig.Port != 8080 {
		t.Errorf("unexpected dev config: %+v", recordedConfig)
	}
	if recordedConfig.ConfigPath != "socialtech.config.yml" {
		t.Errorf("unexpected config path: %q", recordedConfig.ConfigPath)
	}
}

func TestProdCommand_UsesProdConfig(t *testing.T) {
	withMockStart(t)
	unsetPort(t)

	app := &cli.App{Commands: []*cli.Command{ProdCommand}}

	err := app.Run([]string{"socialtech", "prod"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if recordedConfig == nil {
		t.Fatal("expected Start to be called, but it was not")
	}

	if recordedConfig.Env != "prod" || recordedConfig.EnableCache != true || recordedConfig.Port != 8080 {
		t.Errorf("unexpected prod config: %+v", recordedConfig)
	}
}

func TestProdCommand_Flags(t *testing.T) {
	withMockStart(t)

	app := &cli.App{Commands: []*cli.Command{ProdCommand}}

	err := app.Run([]string{"socialtech", "prod", "--no-cache", "--port", "9000", "--config", "custom.yml"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if recordedConfig.EnableCache {
		t.Error("expected --no-cache to disable the page cache")
	}
	if recordedConfig.Port != 9000 {
		t.Errorf("expected port 9000, got %d", recordedConfig.Port)
	}
	if recordedConfig.ConfigPath != "custom.yml" {
		t.Errorf("expected custom.yml, got %q", recordedConfig.ConfigPath)
	}
}

func TestDevCommand_PortFromEnv(t *testing.T) {
	withMockStart(t)
	t.Setenv("PORT", "5005")

	app := &cli.App{Commands: []*cli.Command{DevCommand}}
	if err := app.Run([]string{"socialtech", "dev"}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if recordedConfig.Port != 5005 {
		t.Errorf("expected port from PORT, got %d", recordedConfig.Port)
	}
}
