package main

import (
	"os"

	"github.com/hitoshi/salesnav/internal/app"
)

func main() {
	// エラーはプリンターで整形済みのため、ここでは終了コードのみ返す
	if err := app.Run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
