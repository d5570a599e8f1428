package main

import (
	"os"

	"github.com/cun0/sensor-ingest/internal/app"
)

var version = "dev"

func main() {
	if err := app.RunPublisher(version); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
