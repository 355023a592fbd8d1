package main

import (
	"fmt"
	"os"
)

func main() {
	cmd, closeApp := newRootCmd(appFromEnv)
	err := cmd.Execute()
	if cerr := closeApp(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
