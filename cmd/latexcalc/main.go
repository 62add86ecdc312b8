package main

import (
	"os"

	"github.com/leo5358/latex-calc/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
