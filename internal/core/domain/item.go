package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SchemaVersion identifies the current content-variant layout.
// The union has grown before (color, multi-file, link metadata states);
// bumping this makes each growth an explicit storage migration instead
// of a nullable-column guessing game.
const SchemaVersion = 3

// ContentKind discriminates the payload carried by an Item.
// Exactly one kind is active per item.
type ContentKind string

const (
	KindText    ContentKind = "text"
	KindColor   ContentKind = "color"
	KindLink    ContentKind = "link"
	KindEmail   ContentKind = "email"
	KindPhone   ContentKind = "phone"
	KindAddress ContentKind = "address"
	KindDate    ContentKind = "date"
	KindTransit ContentKind = "transit"
	KindImage   ContentKind = "image"
	KindFile    ContentKind = "file"
)

const unknownDescription = "Unknown"

// IsValid checks if the content kind is recognized.
func (k ContentKind) IsValid() bool {
	switch k {
	case KindText, KindColor, KindLink, KindEmail, KindPhone,
		KindAddress, KindDate, KindTransit, KindImage, KindFile:
		return true
	}
	return false
}

// String returns the string representation.
func (k ContentKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k ContentKind) Description() string {
	switch k {
	case KindText:
		return "Plain text"
	case KindColor:
		return "Color value"
	case KindLink:
		return "Web link"
	case KindEmail:
		return "Email address"
	case KindPhone:
		return "Phone number"
	case KindAddress:
		return "Postal address"
	case KindDate:
		return "Date or time"
	case KindTransit:
		return "Transit reference"
	case KindImage:
		return "Image"
	case KindFile:
		return "File"
	default:
		return unknownDescription
	}
}

// Icon returns the display icon name used by list renderers.
func (k ContentKind) Icon() string {
	switch k {
	case KindColor:
		return "paintpalette"
	case KindLink:
		return "link"
	case KindEmail:
		return "envelope"
	case KindPhone:
		return "phone"
	case KindAddress:
		return "mappin"
	case KindDate:
		return "calendar"
	case KindTransit:
		return "airplane"
	case KindImage:
		return "photo"
	case KindFile:
		return "doc"
	default:
		return "text.alignleft"
	}
}

// AllContentKinds returns all recognized content kinds.
func AllContentKinds() []ContentKind {
	return []ContentKind{
		KindText, KindColor, KindLink, KindEmail, KindPhone,
		KindAddress, KindDate, KindTransit, KindImage, KindFile,
	}
}

// LinkState tracks the lifecycle of fetched link metadata.
// Metadata arrives asynchronously after the link item is saved.
type LinkState string

const (
	// LinkStatePending means metadata has not been fetched yet.
	LinkStatePending LinkState = "pending"

	// LinkStateFailed means the fetch was attempted and failed.
	// Failed links are not retried automatically.
	LinkStateFailed LinkState = "failed"

	// LinkStateLoaded means title/description/image are populated.
	LinkStateLoaded LinkState = "loaded"
)

// IsValid checks if the link state is recognized.
func (s LinkState) IsValid() bool {
	switch s {
	case LinkStatePending, LinkStateFailed, LinkStateLoaded:
		return true
	}
	return false
}

// String returns the string representation.
func (s LinkState) String() string {
	return string(s)
}

// LinkMetadata holds the fetched page metadata for a link item.
type LinkMetadata struct {
	// State is the fetch lifecycle state.
	State LinkState

	// Title is the page title. Populated when State is loaded.
	Title string

	// Description is the page summary. Populated when State is loaded.
	Description string

	// ImageURL is the preview image location. Populated when State is loaded.
	ImageURL string
}

// ColorRGBA is a color packed as 0xRRGGBBAA.
type ColorRGBA uint32

// NewColorRGBA packs the four channels into a ColorRGBA.
func NewColorRGBA(r, g, b, a uint8) ColorRGBA {
	return ColorRGBA(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// R returns the red channel.
func (c ColorRGBA) R() uint8 { return uint8(c >> 24) }

// G returns the green channel.
func (c ColorRGBA) G() uint8 { return uint8(c >> 16) }

// B returns the blue channel.
func (c ColorRGBA) B() uint8 { return uint8(c >> 8) }

// A returns the alpha channel.
func (c ColorRGBA) A() uint8 { return uint8(c) }

// Hex returns the #rrggbb form, with alpha appended when not opaque.
func (c ColorRGBA) Hex() string {
	if c.A() == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B())
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R(), c.G(), c.B(), c.A())
}

// ImageContent holds the binary payload for an image item.
type ImageContent struct {
	// Data is the original image bytes. Excluded from search hydration.
	Data []byte

	// Description is caller-provided text (OCR or accessibility label)
	// that stands in for the pixels in the search index.
	Description string
}

// FileStatus records whether a referenced file is still where it was copied.
// Moved files carry the resolved path after the colon.
type FileStatus string

const (
	// FileStatusOK means the path resolves to the original file.
	FileStatusOK FileStatus = "ok"

	// FileStatusMissing means the file could not be resolved at all.
	FileStatusMissing FileStatus = "missing"

	fileStatusMovedPrefix = "moved:"
)

// FileStatusMoved builds a status recording the file's new location.
func FileStatusMoved(path string) FileStatus {
	return FileStatus(fileStatusMovedPrefix + path)
}

// IsMoved reports whether the file was resolved at a different path.
func (s FileStatus) IsMoved() bool {
	return strings.HasPrefix(string(s), fileStatusMovedPrefix)
}

// MovedPath returns the resolved path for a moved file, or "" otherwise.
func (s FileStatus) MovedPath() string {
	if !s.IsMoved() {
		return ""
	}
	return strings.TrimPrefix(string(s), fileStatusMovedPrefix)
}

// IsValid checks if the file status is recognized.
func (s FileStatus) IsValid() bool {
	return s == FileStatusOK || s == FileStatusMissing || s.IsMoved()
}

// String returns the string representation.
func (s FileStatus) String() string {
	return string(s)
}

// FileAttachment is one constituent file of a file item.
type FileAttachment struct {
	// Path is the absolute path at capture time.
	Path string

	// Filename is the base name used for display.
	Filename string

	// SizeBytes is the file size at capture time.
	SizeBytes int64

	// TypeID is the file type identifier (UTI or MIME).
	TypeID string

	// Locator is an opaque persistent reference that survives moves.
	Locator []byte

	// IsPrimary marks the file shown first in multi-file items.
	IsPrimary bool

	// Status records whether the path still resolves.
	Status FileStatus
}

// Item is a captured clipboard entry.
// Content always holds the primary textual payload; kind-specific
// fields are populated only for their own kind.
type Item struct {
	// ID is assigned by the store on insert and stable for the
	// item's lifetime. Zero means not yet persisted.
	ID int64

	// Kind selects the active payload variant.
	Kind ContentKind

	// Content is the textual payload: the text itself, the URL,
	// the address, or the display name for image/file items.
	Content string

	// ContentHash deduplicates saves. Unique among live items.
	ContentHash string

	// Timestamp is the capture time, refreshed on duplicate save.
	Timestamp time.Time

	// SourceApp is the name of the application the item was copied from.
	SourceApp string

	// SourceBundleID is the bundle identifier of the source application.
	SourceBundleID string

	// Color is the parsed value for color items.
	Color ColorRGBA

	// Link holds fetched metadata for link items.
	Link *LinkMetadata

	// Image holds the binary payload for image items.
	Image *ImageContent

	// Files lists the constituent files for file items, in capture order.
	Files []FileAttachment

	// Thumbnail is a downscaled preview for image and file items,
	// rendered by the caller. Excluded from search hydration.
	Thumbnail []byte
}

// Validate checks the exactly-one-variant invariants.
func (it Item) Validate() error {
	if !it.Kind.IsValid() {
		return fmt.Errorf("%w: content kind %q", ErrInvalidInput, it.Kind)
	}
	if it.Kind == KindLink && it.Link == nil {
		return fmt.Errorf("%w: link item without metadata state", ErrInvalidInput)
	}
	if it.Kind != KindLink && it.Link != nil {
		return fmt.Errorf("%w: %s item with link metadata", ErrInvalidInput, it.Kind)
	}
	if it.Kind == KindImage && it.Image == nil {
		return fmt.Errorf("%w: image item without image payload", ErrInvalidInput)
	}
	if it.Kind != KindImage && it.Image != nil {
		return fmt.Errorf("%w: %s item with image payload", ErrInvalidInput, it.Kind)
	}
	if it.Kind == KindFile && len(it.Files) == 0 {
		return fmt.Errorf("%w: file item without files", ErrInvalidInput)
	}
	if it.Kind != KindFile && len(it.Files) > 0 {
		return fmt.Errorf("%w: %s item with file attachments", ErrInvalidInput, it.Kind)
	}
	return nil
}

// DisplayName returns the list-row title for the item.
func (it Item) DisplayName() string {
	if it.Kind == KindFile {
		return FileDisplayName(it.Files)
	}
	return it.Content
}

// IndexText returns the text projected into the trigram index.
// Image pixels and file locators never reach the index; their
// searchable stand-ins do.
func (it Item) IndexText() string {
	switch it.Kind {
	case KindLink:
		if it.Link != nil && it.Link.State == LinkStateLoaded && it.Link.Title != "" {
			return it.Content + "\n" + it.Link.Title
		}
		return it.Content
	case KindImage:
		if it.Image != nil {
			return it.Image.Description
		}
		return ""
	case KindFile:
		parts := make([]string, 0, 1+2*len(it.Files))
		parts = append(parts, FileDisplayName(it.Files))
		for _, f := range it.Files {
			parts = append(parts, f.Filename, f.Path)
		}
		return strings.Join(parts, "\n")
	default:
		return it.Content
	}
}

// FileDisplayName derives the display name for a set of files:
// one file shows its name, two show both, more show a count.
func FileDisplayName(files []FileAttachment) string {
	switch len(files) {
	case 0:
		return ""
	case 1:
		return files[0].Filename
	case 2:
		return files[0].Filename + ", " + files[1].Filename
	default:
		return fmt.Sprintf("%s and %d more", files[0].Filename, len(files)-1)
	}
}

// TextHash computes the dedup hash for a textual payload.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ImageHash computes the dedup hash for raw image bytes.
func ImageHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileSetHash computes the dedup hash over a set of file paths.
// Paths are sorted first so the hash is order-independent: copying
// the same files in a different order collides with the original.
func FileSetHash(paths []string) string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	h := sha256.New()
	for _, p := range sorted {
		h.Write([]byte("file://" + p + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
