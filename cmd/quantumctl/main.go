package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/quantumtecofficial/ar-study-buddy/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: quantumctl trigger | say <command> | stop")
		os.Exit(2)
	}

	cmd := os.Args[1]
	var text string
	if cmd == "say" {
		text = strings.Join(os.Args[2:], " ")
	}

	if err := ipc.SendCommand(cmd, text); err != nil {
		fmt.Println("quantumd not running:", err)
		os.Exit(1)
	}
}
