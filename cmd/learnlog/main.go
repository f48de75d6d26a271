// Command learnlog captures coding-session events and logged learnings in
// a local SQLite database and serves them back for review.
package main

import (
	"context"
	"os"

	"github.com/roach88/learnlog/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
