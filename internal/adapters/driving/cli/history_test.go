package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clipvault/internal/core/domain"
)

func TestListCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[3]")
	assert.Contains(t, buf.String(), "latest entry")
	assert.Contains(t, buf.String(), "#336699")
}

func TestListCmd_EmptyHistory(t *testing.T) {
	cleanup := installMock(&mockStoreService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "History is empty")
}

func TestListCmd_PrintsCursorWhenMoreRemain(t *testing.T) {
	mock := defaultMockStore()
	mock.page.HasMore = true
	cleanup := installMock(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "--before")
}

func TestListCmd_RejectsBadCursor(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"list", "--before", "yesterday-ish"})
	defer func() {
		rootCmd.SetArgs(nil)
		listBefore = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --before")
}

func TestParseCursor(t *testing.T) {
	ts, err := parseCursor("2025-06-01T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), ts.UTC())

	ts, err = parseCursor("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, 2025, ts.Year())

	_, err = parseCursor("not a time")
	assert.Error(t, err)
}

func TestShowCmd_PrintsItem(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"show", "42"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Item 42 (Plain text)")
	assert.Contains(t, buf.String(), "deploy keys rotated for staging")
	assert.Contains(t, buf.String(), "Terminal")
}

func TestShowCmd_NotFound(t *testing.T) {
	cleanup := installMock(&mockStoreService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"show", "999"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "item 999 not found")
}

func TestShowCmd_RejectsBadID(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"show", "forty-two"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `invalid item id "forty-two"`)
}

func TestPrintItem_LinkFields(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	printItem(rootCmd, domain.Item{
		ID:        7,
		Kind:      domain.KindLink,
		Content:   "https://blog.example/entry",
		Timestamp: time.Now(),
		Link: &domain.LinkMetadata{
			State:       domain.LinkStateLoaded,
			Title:       "Entry Title",
			Description: "A very good entry",
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Web link")
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "Entry Title")
	assert.Contains(t, out, "A very good entry")
}

func TestPrintItem_FileStatuses(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	printItem(rootCmd, domain.Item{
		ID:        9,
		Kind:      domain.KindFile,
		Content:   "report.pdf, raw.csv",
		Timestamp: time.Now(),
		Files: []domain.FileAttachment{
			{Path: "/docs/report.pdf", Filename: "report.pdf", SizeBytes: 2048, IsPrimary: true, Status: domain.FileStatusOK},
			{Path: "/docs/raw.csv", Filename: "raw.csv", Status: domain.FileStatusMoved("/archive/raw.csv")},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Files:     2")
	assert.Contains(t, out, "* /docs/report.pdf")
	assert.Contains(t, out, "moved:/archive/raw.csv")
}

func TestCopyCmd_CopiesAndReports(t *testing.T) {
	mock := defaultMockStore()
	cleanup := installMock(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"copy", "42"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, []int64{42}, mock.copiedIDs)
	assert.Contains(t, buf.String(), "Copied item 42")
}

func TestDeleteCmd_DeletesEach(t *testing.T) {
	mock := defaultMockStore()
	cleanup := installMock(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"delete", "3", "7"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, []int64{3, 7}, mock.deletedIDs)
	assert.Contains(t, buf.String(), "Deleted item 3")
	assert.Contains(t, buf.String(), "Deleted item 7")
}

func TestClearCmd_AbortsWithoutConfirmation(t *testing.T) {
	mock := defaultMockStore()
	cleanup := installMock(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("no\n"))
	rootCmd.SetArgs([]string{"clear"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.False(t, mock.cleared)
	assert.Contains(t, buf.String(), "Aborted")
}

func TestClearCmd_ConfirmedClears(t *testing.T) {
	mock := defaultMockStore()
	cleanup := installMock(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("yes\n"))
	rootCmd.SetArgs([]string{"clear"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.True(t, mock.cleared)
	assert.Contains(t, buf.String(), "Clipboard history cleared")
}

func TestClearCmd_ForceSkipsPrompt(t *testing.T) {
	mock := defaultMockStore()
	cleanup := installMock(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"clear", "--force"})
	defer func() {
		rootCmd.SetArgs(nil)
		clearForce = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.True(t, mock.cleared)
	assert.NotContains(t, buf.String(), "confirm")
}

func TestDescribeCmd_FromArgument(t *testing.T) {
	mock := defaultMockStore()
	cleanup := installMock(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"describe", "42", "login form screenshot"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "login form screenshot", mock.descriptions[42])
	assert.Contains(t, buf.String(), "Updated description for item 42")
}

func TestDescribeCmd_FromStdin(t *testing.T) {
	mock := defaultMockStore()
	cleanup := installMock(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("recognized text\n"))
	rootCmd.SetArgs([]string{"describe", "42"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "recognized text", mock.descriptions[42])
}

func TestDescribeCmd_NotFound(t *testing.T) {
	cleanup := installMock(&mockStoreService{err: domain.ErrNotFound})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"describe", "42", "text"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "item 42 not found")
}

func TestParseItemID(t *testing.T) {
	id, err := parseItemID("42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseItemID("0")
	assert.Error(t, err)

	_, err = parseItemID("-3")
	assert.Error(t, err)

	_, err = parseItemID("abc")
	assert.Error(t, err)
}
