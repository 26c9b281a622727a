package domain

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Classification is the outcome of content detection: the kind plus
// the canonical payload text. Structured kinds store trimmed input;
// plain text keeps the original verbatim.
type Classification struct {
	// Kind is the detected content kind.
	Kind ContentKind

	// Content is the canonical payload text.
	Content string

	// Color is the parsed value when Kind is KindColor.
	Color ColorRGBA
}

var (
	urlPattern   = regexp.MustCompile(`^(https?://\S+|www\.\S+)$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-().]{7,20}$`)
	digitPattern = regexp.MustCompile(`\d`)

	// Street addresses: house number, street name, recognized suffix,
	// optionally followed by city/state/zip after a comma.
	addressPattern = regexp.MustCompile(`(?i)^\d+\s+[A-Za-z0-9 .'-]+\s+(street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|place|pl|way|terrace|ter|circle|cir)\.?(,.+)?$`)

	// Dates: slash forms, ISO with a time component, and textual months.
	// Bare ISO dates fall through to the phone check first, matching the
	// detection order, so only timed ISO strings reach this pattern.
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`),
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2})?Z?$`),
		regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(st|nd|rd|th)?(,?\s*\d{4})?$`),
		regexp.MustCompile(`(?i)^\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?(\s+\d{4})?$`),
	}

	// Flight designators: IATA/ICAO carrier code plus flight number.
	transitPattern = regexp.MustCompile(`^[A-Z]{2,3}\s?\d{1,4}$`)
)

// Classify detects the content kind of raw clipboard text.
// Pure function; unrecognized input always falls back to Text,
// so classification never fails.
func Classify(text string) Classification {
	trimmed := strings.TrimSpace(text)

	if c, ok := parseColor(trimmed); ok {
		return Classification{Kind: KindColor, Content: trimmed, Color: c}
	}
	if isURL(trimmed) {
		return Classification{Kind: KindLink, Content: trimmed}
	}
	if addr, ok := mailtoAddress(trimmed); ok {
		return Classification{Kind: KindEmail, Content: addr}
	}
	if emailPattern.MatchString(trimmed) {
		return Classification{Kind: KindEmail, Content: trimmed}
	}
	if isPhone(trimmed) {
		return Classification{Kind: KindPhone, Content: trimmed}
	}
	if len(trimmed) <= 200 && !strings.Contains(trimmed, "\n") && addressPattern.MatchString(trimmed) {
		return Classification{Kind: KindAddress, Content: trimmed}
	}
	if isDate(trimmed) {
		return Classification{Kind: KindDate, Content: trimmed}
	}
	if transitPattern.MatchString(trimmed) {
		return Classification{Kind: KindTransit, Content: trimmed}
	}
	return Classification{Kind: KindText, Content: text}
}

func isURL(s string) bool {
	if len(s) > 2000 || strings.Contains(s, "\n") {
		return false
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		u, err := url.Parse(s)
		return err == nil && u.Host != ""
	}
	if strings.HasPrefix(s, "www.") {
		u, err := url.Parse("https://" + s)
		return err == nil && u.Host != ""
	}
	return urlPattern.MatchString(s)
}

func mailtoAddress(s string) (string, bool) {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "mailto:") {
		return "", false
	}
	addr := s[len("mailto:"):]
	// Strip ?subject=... query parameters.
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	return addr, true
}

func isPhone(s string) bool {
	if !phonePattern.MatchString(s) {
		return false
	}
	digits := len(digitPattern.FindAllString(s, -1))
	return digits >= 7 && digits <= 15
}

func isDate(s string) bool {
	if len(s) > 60 {
		return false
	}
	for _, p := range datePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// parseColor accepts explicit color syntax only: hex, rgb()/rgba(),
// hsl()/hsla(). Named colors like "red" are ordinary words and must
// stay text.
func parseColor(s string) (ColorRGBA, bool) {
	if s == "" {
		return 0, false
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexColor(lower)
	case strings.HasPrefix(lower, "rgb"):
		return parseRGBColor(lower)
	case strings.HasPrefix(lower, "hsl"):
		return parseHSLColor(lower)
	}
	return 0, false
}

func parseHexColor(s string) (ColorRGBA, bool) {
	hexPart := s[1:]
	for _, r := range hexPart {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return 0, false
		}
	}
	dup := func(c byte) uint8 {
		v, _ := strconv.ParseUint(string([]byte{c, c}), 16, 8)
		return uint8(v)
	}
	pair := func(i int) uint8 {
		v, _ := strconv.ParseUint(hexPart[i:i+2], 16, 8)
		return uint8(v)
	}
	switch len(hexPart) {
	case 3:
		return NewColorRGBA(dup(hexPart[0]), dup(hexPart[1]), dup(hexPart[2]), 0xff), true
	case 4:
		return NewColorRGBA(dup(hexPart[0]), dup(hexPart[1]), dup(hexPart[2]), dup(hexPart[3])), true
	case 6:
		return NewColorRGBA(pair(0), pair(2), pair(4), 0xff), true
	case 8:
		return NewColorRGBA(pair(0), pair(2), pair(4), pair(6)), true
	}
	return 0, false
}

// colorArgs extracts the comma-separated arguments of fn(...) syntax.
func colorArgs(s, fn string) ([]string, bool) {
	rest := strings.TrimPrefix(s, fn)
	rest = strings.TrimPrefix(rest, "a") // rgba / hsla
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return nil, false
	}
	args := strings.Split(rest[1:len(rest)-1], ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	if len(args) != 3 && len(args) != 4 {
		return nil, false
	}
	return args, true
}

func parseAlpha(args []string) (uint8, bool) {
	if len(args) < 4 {
		return 0xff, true
	}
	a, err := strconv.ParseFloat(args[3], 64)
	if err != nil || a < 0 || a > 1 {
		return 0, false
	}
	return uint8(a*255 + 0.5), true
}

func parseRGBColor(s string) (ColorRGBA, bool) {
	args, ok := colorArgs(s, "rgb")
	if !ok {
		return 0, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(args[i])
		if err != nil || v < 0 || v > 255 {
			return 0, false
		}
		ch[i] = uint8(v)
	}
	a, ok := parseAlpha(args)
	if !ok {
		return 0, false
	}
	return NewColorRGBA(ch[0], ch[1], ch[2], a), true
}

func parseHSLColor(s string) (ColorRGBA, bool) {
	args, ok := colorArgs(s, "hsl")
	if !ok {
		return 0, false
	}
	h, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, false
	}
	sat, ok1 := parsePercent(args[1])
	lig, ok2 := parsePercent(args[2])
	if !ok1 || !ok2 {
		return 0, false
	}
	a, ok := parseAlpha(args)
	if !ok {
		return 0, false
	}
	r, g, b := hslToRGB(h, sat, lig)
	return NewColorRGBA(r, g, b, a), true
}

func parsePercent(s string) (float64, bool) {
	if !strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || v < 0 || v > 100 {
		return 0, false
	}
	return v / 100, true
}

// hslToRGB converts hue (degrees), saturation and lightness (0..1)
// to 8-bit RGB channels.
func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch int(h / 60) {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(v float64) uint8 { return uint8((v+m)*255 + 0.5) }
	return to8(r), to8(g), to8(b)
}
