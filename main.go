package main

import (
	"os"

	"github.com/AttendanceAdmin/AttendanceAdmin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
