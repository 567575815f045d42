package main

import (
	"fmt"
	"os"

	// distroless環境でもTIME_ZONEを解決できるようにタイムゾーンDBを埋め込む
	_ "time/tzdata"

	"github.com/hitoshi/tracker/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
