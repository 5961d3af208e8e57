package main

import (
	"os"

	"github.com/dreamerjackson/browser/cmd"
	_ "github.com/dreamerjackson/browser/tasklib"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
