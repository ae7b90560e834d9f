// Command studioctl inspects and repairs clipstudio projects from a shell.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	env := &cliEnv{out: os.Stdout, errOut: os.Stderr, open: openApp}
	err := newRootCmd(env).ExecuteContext(context.Background())
	env.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
