package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

var (
	listLimit  int
	listBefore string
	listJSON   bool
	showJSON   bool
	clearForce bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent history entries",
	Long: `Lists history entries newest first.

Pagination is cursor based: pass the timestamp printed at the end of a
page as --before to continue from there.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one entry in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var copyCmd = &cobra.Command{
	Use:   "copy [id]",
	Short: "Copy an entry back to the clipboard",
	Long: `Writes the entry's paste text to the system clipboard and moves it
to the top of the history. Images paste their description; file sets
paste their paths, one per line.`,
	Args: cobra.ExactArgs(1),
	RunE: runCopy,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete entries from the history",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire history",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var describeCmd = &cobra.Command{
	Use:   "describe [id] [text]",
	Short: "Set the searchable description of an image entry",
	Long: `Replaces an image entry's searchable description, typically with
text recognized from the pixels after capture. The text is taken from
the second argument, or from stdin when only the id is given:

  tesseract screenshot.png - | clipvault describe 42`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDescribe,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "entries per page")
	listCmd.Flags().StringVar(&listBefore, "before", "", "only entries older than this RFC 3339 timestamp")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output entries as JSON")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output the entry as JSON")
	clearCmd.Flags().BoolVar(&clearForce, "force", false, "skip the confirmation prompt")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(describeCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	var before *time.Time
	if listBefore != "" {
		ts, err := parseCursor(listBefore)
		if err != nil {
			return err
		}
		before = &ts
	}

	page, err := storeService.FetchPage(cmd.Context(), before, listLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if listJSON {
		data, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal page: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(page.Items) == 0 {
		cmd.Println("History is empty.")
		return nil
	}

	width := displayWidth()
	for _, it := range page.Items {
		cmd.Printf("  [%d] %-7s %s  (%s)\n",
			it.ID, it.Kind, truncate(it.DisplayName(), width-30), humanize.Time(it.Timestamp))
	}
	if page.HasMore {
		last := page.Items[len(page.Items)-1].Timestamp
		cmd.Printf("\nMore entries remain. Continue with --before %s\n", last.UTC().Format(time.RFC3339))
	}
	return nil
}

// parseCursor accepts an RFC 3339 timestamp or a bare date.
func parseCursor(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid --before value %q: want RFC 3339 or YYYY-MM-DD", s)
}

func runShow(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}

	item, err := storeService.Get(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("item %d not found", id)
		}
		return fmt.Errorf("failed to load item: %w", err)
	}

	if showJSON {
		data, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal item: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printItem(cmd, *item)
	return nil
}

func printItem(cmd *cobra.Command, it domain.Item) {
	cmd.Printf("Item %d (%s)\n\n", it.ID, it.Kind.Description())
	cmd.Printf("  Content:   %s\n", it.Content)
	cmd.Printf("  Captured:  %s (%s)\n",
		it.Timestamp.Local().Format("2006-01-02 15:04:05"), humanize.Time(it.Timestamp))
	if it.SourceApp != "" {
		source := it.SourceApp
		if it.SourceBundleID != "" {
			source += " (" + it.SourceBundleID + ")"
		}
		cmd.Printf("  Source:    %s\n", source)
	}

	switch it.Kind {
	case domain.KindColor:
		cmd.Printf("  Color:     %s\n", it.Color.Hex())
	case domain.KindLink:
		if it.Link == nil {
			break
		}
		cmd.Printf("  Link:      %s\n", it.Link.State)
		if it.Link.Title != "" {
			cmd.Printf("    Title:       %s\n", it.Link.Title)
		}
		if it.Link.Description != "" {
			cmd.Printf("    Description: %s\n", it.Link.Description)
		}
		if it.Link.ImageURL != "" {
			cmd.Printf("    Image:       %s\n", it.Link.ImageURL)
		}
	case domain.KindImage:
		if it.Image == nil {
			break
		}
		cmd.Printf("  Image:     %s\n", humanize.Bytes(uint64(len(it.Image.Data))))
		if it.Image.Description != "" {
			cmd.Printf("    Description: %s\n", it.Image.Description)
		}
	case domain.KindFile:
		cmd.Printf("  Files:     %d\n", len(it.Files))
		for _, f := range it.Files {
			marker := " "
			if f.IsPrimary {
				marker = "*"
			}
			cmd.Printf("    %s %s (%s, %s)\n", marker, f.Path, humanize.Bytes(uint64(f.SizeBytes)), f.Status)
		}
	}
}

func runCopy(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}

	if err := storeService.CopyToClipboard(cmd.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("item %d not found", id)
		}
		return fmt.Errorf("failed to copy item: %w", err)
	}
	cmd.Printf("Copied item %d to the clipboard.\n", id)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	for _, arg := range args {
		id, err := parseItemID(arg)
		if err != nil {
			return err
		}
		if err := storeService.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete item %d: %w", id, err)
		}
		cmd.Printf("Deleted item %d.\n", id)
	}
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	if !clearForce {
		cmd.Print("This permanently deletes the entire clipboard history. Type \"yes\" to confirm: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading confirmation: %w", err)
		}
		if strings.TrimSpace(line) != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := storeService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Println("Clipboard history cleared.")
	return nil
}

func runDescribe(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}

	var description string
	if len(args) == 2 {
		description = args[1]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		description = strings.TrimSpace(string(data))
	}

	if err := storeService.SetImageDescription(cmd.Context(), id, description); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("item %d not found", id)
		}
		return fmt.Errorf("failed to update description: %w", err)
	}
	cmd.Printf("Updated description for item %d.\n", id)
	return nil
}

// parseItemID parses a positive item id argument.
func parseItemID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", s)
	}
	return id, nil
}
