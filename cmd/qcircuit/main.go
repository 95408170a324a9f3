package main

import (
	"os"

	"github.com/theapemachine/errnie"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		errnie.Info("qcircuit - %v", err)
		os.Exit(1)
	}
}
