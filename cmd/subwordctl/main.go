package main

import (
	"fmt"
	"os"
)

func main() {
	// Exit contract per spec.md §6: success returns 0, any error returns a
	// non-zero code with an explanatory message on the error sink.
	if err := NewCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
