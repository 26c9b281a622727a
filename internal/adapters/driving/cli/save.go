package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clipvault/internal/core/domain"
	"github.com/custodia-labs/clipvault/internal/core/ports/driving"
)

var (
	saveFilePaths   []string
	saveImagePath   string
	saveDescription string
	saveSourceApp   string
	saveBundleID    string
)

var saveCmd = &cobra.Command{
	Use:   "save [text]",
	Short: "Save an entry to the history",
	Long: `Saves a clipboard entry without going through the watcher.

Text is taken from the argument, or from stdin when no argument is
given. Use --file (repeatable) to save file references instead, or
--image to save an image with a searchable description.

Duplicate content never creates a second entry; the existing one is
moved to the top of the history instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringArrayVarP(&saveFilePaths, "file", "f", nil, "file to save (repeat for a file set)")
	saveCmd.Flags().StringVarP(&saveImagePath, "image", "i", "", "image file to save")
	saveCmd.Flags().StringVarP(&saveDescription, "description", "d", "", "searchable description for --image")
	saveCmd.Flags().StringVar(&saveSourceApp, "app", "", "source application name")
	saveCmd.Flags().StringVar(&saveBundleID, "bundle-id", "", "source application bundle identifier")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}
	if saveImagePath != "" && len(saveFilePaths) > 0 {
		return errors.New("--image and --file are mutually exclusive")
	}

	ctx := cmd.Context()

	switch {
	case saveImagePath != "":
		return saveImage(ctx, cmd)
	case len(saveFilePaths) > 0:
		return saveFileSet(ctx, cmd)
	default:
		return saveText(ctx, cmd, args)
	}
}

func saveText(ctx context.Context, cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to save: pass text or pipe it on stdin")
	}

	id, err := storeService.SaveText(ctx, text, saveSourceApp, saveBundleID)
	if err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	printSaved(cmd, id)
	return nil
}

func saveImage(ctx context.Context, cmd *cobra.Command) error {
	data, err := os.ReadFile(saveImagePath)
	if err != nil {
		return fmt.Errorf("reading image %s: %w", saveImagePath, err)
	}
	description := saveDescription
	if description == "" {
		description = filepath.Base(saveImagePath)
	}

	id, err := storeService.SaveImage(ctx, driving.SaveImageRequest{
		Data:           data,
		Description:    description,
		SourceApp:      saveSourceApp,
		SourceBundleID: saveBundleID,
	})
	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	printSaved(cmd, id)
	return nil
}

func saveFileSet(ctx context.Context, cmd *cobra.Command) error {
	files := make([]domain.FileAttachment, 0, len(saveFilePaths))
	for i, path := range saveFilePaths {
		att, err := fileAttachment(path, i == 0)
		if err != nil {
			return err
		}
		files = append(files, att)
	}

	id, err := storeService.SaveFiles(ctx, driving.SaveFilesRequest{
		Files:          files,
		SourceApp:      saveSourceApp,
		SourceBundleID: saveBundleID,
	})
	if err != nil {
		return fmt.Errorf("failed to save files: %w", err)
	}
	printSaved(cmd, id)
	return nil
}

// fileAttachment resolves a path into an attachment record. The file
// must exist at save time; status tracking covers later moves.
func fileAttachment(path string, primary bool) (domain.FileAttachment, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.FileAttachment{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return domain.FileAttachment{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.FileAttachment{}, fmt.Errorf("%s is a directory", path)
	}
	return domain.FileAttachment{
		Path:      abs,
		Filename:  filepath.Base(abs),
		SizeBytes: info.Size(),
		TypeID:    mime.TypeByExtension(filepath.Ext(abs)),
		IsPrimary: primary,
		Status:    domain.FileStatusOK,
	}, nil
}

func printSaved(cmd *cobra.Command, id int64) {
	if id == 0 {
		cmd.Println("Already in history; moved existing entry to the top.")
		return
	}
	cmd.Printf("Saved item %d.\n", id)
}
