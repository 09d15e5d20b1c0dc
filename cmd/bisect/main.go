package main

import (
	"errors"
	"fmt"
	"os"

	"bisection/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()

	// ExitError уже выведен в выбранном формате
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
