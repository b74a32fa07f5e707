package main

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	sitecli "github.com/socialtech/site/cli"
	"github.com/urfave/cli/v2"
)

func dummyCmd(name string) *cli.Command {
	return &cli.Command{
		Name: name,
		Action: func(c *cli.Context) error {
			return nil
		},
	}
}

func failingCmd(name string) *cli.Command {
	return &cli.Command{
		Name: name,
		Action: func(c *cli.Context) error {
			return errors.New("intentional failure")
		},
	}
}

func stubCommands(t *testing.T) {
	t.Helper()
	original := []*cli.Command{
		sitecli.InitCommand, sitecli.DevCommand, sitecli.ProdCommand,
		sitecli.CleanCommand, sitecli.CheckCommand, sitecli.InfoCommand,
	}
	t.Cleanup(func() {
		sitecli.InitCommand, sitecli.DevCommand, sitecli.ProdCommand = original[0], original[1], original[2]
		sitecli.CleanCommand, sitecli.CheckCommand, sitecli.InfoCommand = original[3], original[4], original[5]
	})

	sitecli.InitCommand = dummyCmd("init")
	sitecli.DevCommand = dummyCmd("dev")
	sitecli.ProdCommand = dummyCmd("prod")
	sitecli.CleanCommand = dummyCmd("clean")
	sitecli.CheckCommand = dummyCmd("check")
	sitecli.InfoCommand = dummyCmd("info")
}

func Test_runApp_SuccessfulCommands(t *testing.T) {
	stubCommands(t)

	commands := []string{"init", "dev", "prod", "clean", "check", "info"}
	for _, cmd := range commands {
		t.Run(cmd, func(t *testing.T) {
			err := runApp([]string{"socialtech", cmd})
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
		})
	}
}

func Test_runApp_ErrorCommand(t *testing.T) {
	stubCommands(t)
	sitecli.InitCommand = failingCmd("init")

	err := runApp([]string{"socialtech", "init"})
	if err == nil || err.Error() != "intentional failure" {
		t.Fatalf("Expected error 'intentional failure', got: %v", err)
	}
}

func Test_main_LogFatalPath(t *testing.T) {
	if os.Getenv("BE_CRASHER") == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "invalidCommand")
	cmd.Env = append(os.Environ(), "BE_CRASHER=1")

	output, err := cmd.CombinedOutput()

	if exitErr, ok := err.(*exec.ExitError); !ok {
		t.Fatalf("Expected exit error, got: %v", err)
	} else if exitErr.ExitCode() == 0 {
		t.Fatalf("Expected non-zero exit code from main")
	}

	if !strings.Contains(string(output), "No help topic for") {
		t.Errorf("Expected CLI error output, got: %s", output)
	}
}
