package main

import (
	"fmt"
	"os"

	"github.com/kassick/dotdot/internal/color"
)

func main() {
	color.Init()
	if err := buildRoot().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.BoldRed("error:"), err)
		os.Exit(1)
	}
}
