// Command server runs the points tracker API.
package main

import (
	"fmt"
	"os"

	"pontoscli/internal/app"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("application exited with error", "error", err.Error())
		os.Exit(1)
	}
}
