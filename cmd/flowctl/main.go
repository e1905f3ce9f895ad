// flowctl runs CogniFloe workflow analysis and prediction from the command
// line, against the remote service when one is given and locally otherwise.
package main

import (
	"fmt"
	"os"

	"github.com/cognifloe/control-plane/cmd/flowctl/cmd"
)

var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
