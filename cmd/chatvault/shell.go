package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chatvault/internal/search"
)

const shellHelp = `Commands:
  \h, help     show this help
  \q, quit     leave the shell

Search syntax:
  <term> [-b BOT] [-r] [-c] [-w]

Options:
  -b, --bot    filter by bot name
  -r, --regex  treat the term as a regular expression
  -c, --case   case-sensitive matching
  -w, --whole  whole-word matching

Examples:
  python                   simple search
  python -b gemini         search within one bot
  "^import" -r             regex search`

// runShell is the line-oriented interactive search loop.
func runShell(cmd *cobra.Command, engine *search.Engine) error {
	fmt.Println("Interactive chat search. Type \\h for help, \\q to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("search> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case `\q`, "quit":
			return nil
		case `\h`, "help":
			fmt.Println(shellHelp)
			continue
		}

		term, opts, err := parseShellLine(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		results, err := engine.Find(cmd.Context(), term, opts)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResults(results)
	}
}

// parseShellLine splits `<term> [-b BOT] [-r] [-c] [-w]`. Quoted terms keep
// their inner spaces.
func parseShellLine(line string) (string, search.MatchOptions, error) {
	fields := splitQuoted(line)
	if len(fields) == 0 {
		return "", search.MatchOptions{}, fmt.Errorf("empty query")
	}

	term := fields[0]
	var opts search.MatchOptions
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "-b", "--bot":
			if i+1 >= len(fields) {
				return "", search.MatchOptions{}, fmt.Errorf("%s requires a bot name", fields[i])
			}
			i++
			opts.Bot = fields[i]
		case "-r", "--regex":
			opts.Regex = true
		case "-c", "--case":
			opts.CaseSensitive = true
		case "-w", "--whole":
			opts.WholeWord = true
		default:
			return "", search.MatchOptions{}, fmt.Errorf("unknown option %q", fields[i])
		}
	}
	return term, opts, nil
}

func splitQuoted(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	flush := func() {
		if current.Len() > 0 {
			fields = append(fields, current.String())
			current.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			if !inQuotes {
				flush()
			}
		case r == ' ' && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return fields
}
