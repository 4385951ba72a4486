package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"

	"github.com/KevoDB/sectionlist/pkg/common/log"
	"github.com/KevoDB/sectionlist/pkg/config"
)

// Command completer for readline
var completer = readline.NewPrefixCompleter(
	readline.PcItem(".help"),
	readline.PcItem(".open"),
	readline.PcItem(".close"),
	readline.PcItem(".exit"),
	readline.PcItem(".stats"),
	readline.PcItem(".reload"),
	readline.PcItem(".group",
		readline.PcItem("value"),
		readline.PcItem("initial"),
	),
	readline.PcItem(".sort",
		readline.PcItem("none"),
	),
	readline.PcItem(".grouporder",
		readline.PcItem(config.GroupOrderFirst),
		readline.PcItem(config.GroupOrderKey),
		readline.PcItem(config.GroupOrderKeyDesc),
		readline.PcItem(config.GroupOrderSize),
	),
	readline.PcItem(".order",
		readline.PcItem("reverse"),
		readline.PcItem("forward"),
	),
	readline.PcItem(".dividers",
		readline.PcItem("on"),
		readline.PcItem("off"),
	),
	readline.PcItem(".display",
		readline.PcItem(config.DisplayRaw),
		readline.PcItem(config.DisplayUpper),
		readline.PcItem(config.DisplayLower),
		readline.PcItem(config.DisplayTitle),
	),
	readline.PcItem(".label"),
	readline.PcItem(".show"),
	readline.PcItem(".children"),
	readline.PcItem(".sections"),
	readline.PcItem(".section"),
	readline.PcItem(".position"),
)

const helpText = `
sectionlist (slsh) - interactive shell for sectioned lists

Usage:
  slsh [dataset_path]     - Start with an optional dataset

Commands:
  .help                   - Show this help message
  .open PATH              - Open a dataset (.json, .jsonl, optionally .gz or .zst)
  .close                  - Close the current dataset
  .exit                   - Exit the program
  .stats                  - Show statistics
  .reload                 - Re-read the dataset

  .group FIELD [MODE]     - Group by FIELD; MODE is value (default) or initial
  .sort FIELD [desc]      - Order records inside a group by FIELD
  .sort none              - Keep the input order inside groups
  .grouporder ORDER       - Order groups: first, key, key_desc or size
  .display MODE           - Show keys raw, upper, lower or title cased
  .order reverse|forward  - Traversal order of groups in the list
  .dividers on|off        - Insert dividers between children
  .label FIELD            - Field shown for each record (empty for whole record)

  .show [START [END]]     - Render the list, optionally positions [START, END)
  .children               - Render children only
  .sections               - Show the section index
  .section POSITION       - Section containing a list position
  .position SECTION       - List position of a section
`

func main() {
	fmt.Println("sectionlist (slsh) version 1.0.0")
	fmt.Println("Enter .help for usage hints.")

	cfg := config.NewDefaultConfig()
	cfg.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in environment configuration: %s\n", err)
		os.Exit(1)
	}

	sh := newShell(cfg, os.Stdout, os.Stderr)
	defer sh.close()

	ctx := context.Background()

	if len(os.Args) > 1 {
		fmt.Printf("Opening dataset at %s\n", os.Args[1])
		if err := sh.open(ctx, os.Args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening dataset: %s\n", err)
			os.Exit(1)
		}
	} else if cfg.Dataset.Path != "" {
		if err := sh.open(ctx, cfg.Dataset.Path); err != nil {
			log.Warn("Could not open configured dataset %s: %v", cfg.Dataset.Path, err)
		} else {
			log.Info("Opened configured dataset %s", cfg.Dataset.Path)
		}
	}

	// Setup readline with history support
	historyFile := filepath.Join(os.TempDir(), ".slsh_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "slsh> ",
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing readline: %s\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		rl.SetPrompt(sh.prompt())

		line, readErr := rl.Readline()
		if readErr != nil {
			if readErr == readline.ErrInterrupt {
				if len(line) == 0 {
					break
				}
				continue
			} else if readErr == io.EOF {
				fmt.Println("Goodbye!")
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", readErr)
			continue
		}

		if sh.exec(ctx, line) {
			return
		}
	}
}
