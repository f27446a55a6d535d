// main is the entry point of the student-records tool.
//
// STARTUP SEQUENCE (for every command that touches the records):
//  1. Load configuration from a YAML file and the environment
//  2. Initialise the logger
//  3. Open the configured storage backend
//  4. Load the record list from storage
//  5. Run the command: HTTP server, terminal UI, or a one-shot action
//  6. Release the storage backend on the way out
//
// RUNNING:
//
//	go run ./cmd/student-records serve --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-records tui
package main

import (
	"os"
)

func main() {
	// cobra already printed the error; only the exit code is left.
	if err := execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
