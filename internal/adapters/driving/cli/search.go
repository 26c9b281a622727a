package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

var (
	searchLimit int
	searchKinds []string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the clipboard history",
	Long: `Searches the clipboard history with typo tolerance.

Queries of three or more characters go through the trigram index and
are ranked by how well they match, with newer entries winning ties.
Shorter queries scan for prefixes and recent substrings instead, and
an empty query just lists the most recent entries.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = tuning default)")
	searchCmd.Flags().StringSliceVarP(&searchKinds, "kind", "k", nil, "restrict to content kinds (text, link, image, ...)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	kinds, err := parseKinds(searchKinds)
	if err != nil {
		return err
	}

	resp, err := storeService.Search(cmd.Context(), query, domain.SearchOptions{
		Kinds: kinds,
		Limit: searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}
	return outputSearchTable(cmd, resp)
}

// parseKinds validates the --kind values against the known content kinds.
func parseKinds(names []string) ([]domain.ContentKind, error) {
	if len(names) == 0 {
		return nil, nil
	}
	kinds := make([]domain.ContentKind, 0, len(names))
	for _, name := range names {
		k := domain.ContentKind(strings.ToLower(strings.TrimSpace(name)))
		if !k.IsValid() {
			return nil, fmt.Errorf("unknown content kind %q", name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func outputSearchJSON(cmd *cobra.Command, resp domain.SearchResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp domain.SearchResponse) error {
	if len(resp.Matches) == 0 {
		cmd.Println("No matches found.")
		return nil
	}

	width := displayWidth()
	for _, m := range resp.Matches {
		it := m.Item
		title := truncate(it.DisplayName(), width-30)
		cmd.Printf("  [%d] %-7s %s  (%s)\n", it.ID, it.Kind, title, humanize.Time(it.Timestamp))
		if snippet := m.Match.Snippet; snippet != "" && snippet != title {
			cmd.Printf("      %s\n", truncate(snippet, width-8))
		}
	}

	cmd.Printf("\n%d of %d matches. Use \"clipvault copy <id>\" to paste one.\n",
		len(resp.Matches), resp.TotalCount)
	return nil
}

// displayWidth bounds one-line previews to the terminal, with a fixed
// fallback when stdout is a pipe.
func displayWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w >= 40 {
		return w
	}
	return 100
}

// truncate flattens whitespace and cuts s to at most n characters,
// counting runes so multibyte text never splits.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
