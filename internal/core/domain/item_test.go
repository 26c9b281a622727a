package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestContentKind_IsValid tests kind validation
func TestContentKind_IsValid(t *testing.T) {
	for _, k := range AllContentKinds() {
		assert.True(t, k.IsValid(), "kind %s should be valid", k)
	}
	assert.False(t, ContentKind("video").IsValid())
	assert.False(t, ContentKind("").IsValid())
}

// TestContentKind_Description tests kind descriptions
func TestContentKind_Description(t *testing.T) {
	assert.Equal(t, "Plain text", KindText.Description())
	assert.Equal(t, "Web link", KindLink.Description())
	assert.Equal(t, unknownDescription, ContentKind("bogus").Description())
}

// TestContentKind_Icon tests that every kind has an icon
func TestContentKind_Icon(t *testing.T) {
	for _, k := range AllContentKinds() {
		assert.NotEmpty(t, k.Icon())
	}
}

// TestLinkState_IsValid tests link state validation
func TestLinkState_IsValid(t *testing.T) {
	assert.True(t, LinkStatePending.IsValid())
	assert.True(t, LinkStateFailed.IsValid())
	assert.True(t, LinkStateLoaded.IsValid())
	assert.False(t, LinkState("fetching").IsValid())
}

// TestColorRGBA_Channels tests channel packing and unpacking
func TestColorRGBA_Channels(t *testing.T) {
	c := NewColorRGBA(0x11, 0x22, 0x33, 0x44)
	assert.Equal(t, uint8(0x11), c.R())
	assert.Equal(t, uint8(0x22), c.G())
	assert.Equal(t, uint8(0x33), c.B())
	assert.Equal(t, uint8(0x44), c.A())
}

// TestColorRGBA_Hex tests hex formatting
func TestColorRGBA_Hex(t *testing.T) {
	assert.Equal(t, "#ff5733", NewColorRGBA(0xff, 0x57, 0x33, 0xff).Hex())
	assert.Equal(t, "#ff573380", NewColorRGBA(0xff, 0x57, 0x33, 0x80).Hex())
}

// TestFileStatus_Moved tests the moved status round trip
func TestFileStatus_Moved(t *testing.T) {
	s := FileStatusMoved("/new/place/file.txt")
	assert.True(t, s.IsMoved())
	assert.True(t, s.IsValid())
	assert.Equal(t, "/new/place/file.txt", s.MovedPath())

	assert.False(t, FileStatusOK.IsMoved())
	assert.Empty(t, FileStatusOK.MovedPath())
	assert.False(t, FileStatus("gone").IsValid())
}

// TestItem_Validate tests the exactly-one-variant invariants
func TestItem_Validate(t *testing.T) {
	ok := Item{Kind: KindText, Content: "hello"}
	require.NoError(t, ok.Validate())

	link := Item{Kind: KindLink, Content: "https://example.com", Link: &LinkMetadata{State: LinkStatePending}}
	require.NoError(t, link.Validate())

	// Link item missing its metadata state.
	bad := Item{Kind: KindLink, Content: "https://example.com"}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Text item carrying an image payload.
	bad = Item{Kind: KindText, Content: "x", Image: &ImageContent{}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidInput)

	// File item with no files.
	bad = Item{Kind: KindFile}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidInput)

	// Unknown kind.
	bad = Item{Kind: ContentKind("video")}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidInput)
}

// TestFileDisplayName_Rule tests the display name derivation
func TestFileDisplayName_Rule(t *testing.T) {
	one := []FileAttachment{{Filename: "a.txt"}}
	two := []FileAttachment{{Filename: "a.txt"}, {Filename: "b.txt"}}
	three := []FileAttachment{{Filename: "a.txt"}, {Filename: "b.txt"}, {Filename: "c.txt"}}

	assert.Equal(t, "a.txt", FileDisplayName(one))
	assert.Equal(t, "a.txt, b.txt", FileDisplayName(two))
	assert.Equal(t, "a.txt and 2 more", FileDisplayName(three))
	assert.Empty(t, FileDisplayName(nil))
}

// TestItem_IndexText_Text tests index projection for plain text
func TestItem_IndexText_Text(t *testing.T) {
	it := Item{Kind: KindText, Content: "hello world"}
	assert.Equal(t, "hello world", it.IndexText())
}

// TestItem_IndexText_Link tests that loaded titles become searchable
func TestItem_IndexText_Link(t *testing.T) {
	pending := Item{
		Kind:    KindLink,
		Content: "https://example.com",
		Link:    &LinkMetadata{State: LinkStatePending},
	}
	assert.Equal(t, "https://example.com", pending.IndexText())

	loaded := Item{
		Kind:    KindLink,
		Content: "https://example.com",
		Link:    &LinkMetadata{State: LinkStateLoaded, Title: "Example Domain"},
	}
	assert.Equal(t, "https://example.com\nExample Domain", loaded.IndexText())
}

// TestItem_IndexText_Image tests that descriptions stand in for pixels
func TestItem_IndexText_Image(t *testing.T) {
	it := Item{
		Kind:    KindImage,
		Content: "Screenshot",
		Image:   &ImageContent{Data: []byte{1, 2, 3}, Description: "login form screenshot"},
	}
	assert.Equal(t, "login form screenshot", it.IndexText())
}

// TestItem_IndexText_File tests that filenames and paths are searchable
func TestItem_IndexText_File(t *testing.T) {
	it := Item{
		Kind: KindFile,
		Files: []FileAttachment{
			{Path: "/tmp/report.pdf", Filename: "report.pdf"},
			{Path: "/tmp/data.csv", Filename: "data.csv"},
		},
	}
	text := it.IndexText()
	assert.True(t, strings.Contains(text, "report.pdf"))
	assert.True(t, strings.Contains(text, "/tmp/data.csv"))
	assert.True(t, strings.HasPrefix(text, "report.pdf, data.csv"))
}

// TestItem_DisplayName tests the list-row title
func TestItem_DisplayName(t *testing.T) {
	text := Item{Kind: KindText, Content: "hello"}
	assert.Equal(t, "hello", text.DisplayName())

	files := Item{Kind: KindFile, Files: []FileAttachment{{Filename: "a.txt"}}}
	assert.Equal(t, "a.txt", files.DisplayName())
}

// TestTextHash_Deterministic tests text hashing
func TestTextHash_Deterministic(t *testing.T) {
	h1 := TextHash("hello")
	h2 := TextHash("hello")
	h3 := TextHash("hello!")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

// TestFileSetHash_OrderIndependent tests that path order never matters
func TestFileSetHash_OrderIndependent(t *testing.T) {
	ab := FileSetHash([]string{"/tmp/a", "/tmp/b"})
	ba := FileSetHash([]string{"/tmp/b", "/tmp/a"})
	assert.Equal(t, ab, ba)

	other := FileSetHash([]string{"/tmp/a", "/tmp/c"})
	assert.NotEqual(t, ab, other)
}

// TestFileSetHash_DoesNotMutateInput tests the input slice is untouched
func TestFileSetHash_DoesNotMutateInput(t *testing.T) {
	paths := []string{"/tmp/b", "/tmp/a"}
	FileSetHash(paths)
	assert.Equal(t, []string{"/tmp/b", "/tmp/a"}, paths)
}

// TestItem_Fields tests Item structure fields
func TestItem_Fields(t *testing.T) {
	now := time.Now()
	it := Item{
		ID:             42,
		Kind:           KindText,
		Content:        "hello",
		ContentHash:    TextHash("hello"),
		Timestamp:      now,
		SourceApp:      "Terminal",
		SourceBundleID: "com.apple.Terminal",
	}

	assert.Equal(t, int64(42), it.ID)
	assert.Equal(t, KindText, it.Kind)
	assert.Equal(t, "Terminal", it.SourceApp)
	assert.Equal(t, "com.apple.Terminal", it.SourceBundleID)
	assert.Equal(t, now, it.Timestamp)
}
