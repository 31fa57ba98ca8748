// FilePath: cmd/main.go
package main

import (
	"fmt"
	"os"

	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"
)

// @title SBSBS Report Hub API
// @version 1.0
// @description Receives basking station detections over SMS and serves the detection report.
// @BasePath /
func main() {
	// Initialize version info
	nuts.InitVersion()

	if err := rootCommand().Execute(); err != nil {
		nuts.L.Errorf("[Main] %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   _____ ____  _____ ____  _____ ",
		"  / ___// __ )/ ___// __ )/ ___/ ",
		"  \\__ \\/ __  |\\__ \\/ __  |\\__ \\  ",
		" ___/ / /_/ /___/ / /_/ /___/ /  ",
		"/____/_____//____/_____//____/   ",
		"..................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
