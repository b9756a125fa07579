package main

import (
	"fmt"
	"os"

	"github.com/arborist-labs/resmon/cmd/resmon"
)

func main() {
	if err := resmon.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
