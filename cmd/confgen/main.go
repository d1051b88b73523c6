// confgen - Macrocycle conformer generation tool
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ChrisMcGann/ConfGen/cmd/confgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var usage *cmd.UsageError
		if errors.As(err, &usage) {
			fmt.Fprintln(os.Stderr, usage.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
