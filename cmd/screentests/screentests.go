package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tigerbot-team/tigerbot/rotation-resist/pkg/screen"
)

// Reads commands from stdin: a number shows it as the angle, "warn" shows
// the enable warning, "log" toggles the logging line, anything else is shown
// as a notice.
func main() {
	device := flag.String("device", screen.DefaultDevice, "framebuffer device")
	flag.Parse()

	fb, err := screen.Open(*device)
	if err != nil {
		fmt.Println("Screen:", err)
		os.Exit(1)
	}
	defer fb.Close()

	st := screen.Status{Profile: "Standard"}
	show := func() {
		if err := fb.ShowStatus(st); err != nil {
			fmt.Println("Screen failure:", err)
		}
	}
	show()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "warn":
			if err := fb.ShowWarning(); err != nil {
				fmt.Println("Screen failure:", err)
			}
			continue
		case line == "log":
			st.Logging = !st.Logging
		default:
			if a, err := strconv.ParseFloat(line, 64); err == nil {
				st.Angle = a
			} else {
				st.Notice = line
			}
		}
		show()
	}
}
