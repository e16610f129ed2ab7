package main

import (
	"os"

	"horse.fit/lookout/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
