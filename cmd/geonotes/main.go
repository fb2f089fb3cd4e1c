package main

import (
	"fmt"
	"os"
)

const usageText = `geonotes reads and writes location-tagged notes.

Usage:
  geonotes <command> [flags]

Commands:
  login     log in and remember the session
  logout    forget the session
  register  create an account (sends a verification code)
  verify    finish a registration with its code
  whoami    print the logged in user
  notes     list notes around a point, inside bounds, or by user
  thread    print a note and its replies
  create    create a note
  reply     reply to a note
  delete    delete one of your notes
  ui        run the terminal UI
  shell     run the interactive shell
  config    print configuration (effective or defaults)
  help      show help

Flags:
  -h, --help   show help

Examples:
  geonotes login --user alice
  geonotes notes --lat 51.5 --lng -0.09 --zoom 14
  geonotes thread 42 --format html
  geonotes create --lat 51.5 --lng -0.09 "coffee is good here"
  geonotes config --default --format toml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
