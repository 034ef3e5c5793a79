package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chatvault/internal/domain"
	"chatvault/internal/search"
)

var (
	searchDB          string
	searchBot         string
	searchRegex       bool
	searchCase        bool
	searchWhole       bool
	searchInteractive bool
)

func init() {
	searchCmd.Flags().StringVar(&searchDB, "db", "", "database path (default $CHATVAULT_DB)")
	searchCmd.Flags().StringVarP(&searchBot, "bot", "b", "", "filter by bot name")
	searchCmd.Flags().BoolVarP(&searchRegex, "regex", "r", false, "treat the query as a regular expression")
	searchCmd.Flags().BoolVarP(&searchCase, "case", "c", false, "case-sensitive matching")
	searchCmd.Flags().BoolVarP(&searchWhole, "whole", "w", false, "whole-word matching")
	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "interactive shell")
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested chat history",
	Long: `Searches the chat history store for a term or pattern and prints the
matching chats with per-chat occurrence counts. With no query, or with -i,
an interactive shell is started.

Examples:
  chatvault search python
  chatvault search python -b gemini
  chatvault search '^import' -r
  chatvault search -i`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	store, err := openExistingStore(searchDB)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := search.NewEngine(store, logger)

	if searchInteractive || len(args) == 0 {
		return runShell(cmd, engine)
	}

	results, err := engine.Find(cmd.Context(), args[0], search.MatchOptions{
		Bot:           searchBot,
		Regex:         searchRegex,
		CaseSensitive: searchCase,
		WholeWord:     searchWhole,
	})
	if err != nil {
		return err
	}
	printResults(results)
	return nil
}

func printResults(results []domain.ChatResult) {
	if len(results) == 0 {
		fmt.Println("No results found.")
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BOT\tCHAT\tOCCURRENCES")
	for _, result := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", result.BotName, result.ChatTitle, result.Occurrences)
	}
	tw.Flush()
}
