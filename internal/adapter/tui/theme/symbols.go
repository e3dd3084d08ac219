package theme

import (
	"os"
	"strconv"
	"strings"
)

// glyph binds a Symbol* variable to its two renderings. The sender labels
// are not glyphs: a terminal that cannot draw Hangul cannot draw the
// transcript either, so they never change.
type glyph struct {
	dst     *string
	unicode string
	ascii   string
}

var glyphs = []glyph{
	{&SymbolSuccess, "✓", "[OK]"},
	{&SymbolError, "✗", "[ERR]"},
	{&SymbolInfo, "●", "[i]"},
	{&SymbolArrowR, "→", "->"},
	{&SymbolBullet, "•", "*"},
	{&SymbolEllipsis, "…", "..."},
}

// ASCIIOnly reports whether glyphs should fall back to ASCII. HIBOT_ASCII_SYMBOLS
// wins when set; otherwise only an explicit C or POSIX locale turns it on.
func ASCIIOnly() bool {
	if v := os.Getenv("HIBOT_ASCII_SYMBOLS"); v != "" {
		on, err := strconv.ParseBool(v)
		return err == nil && on
	}
	for _, key := range []string{"LC_ALL", "LC_CTYPE"} {
		if v := os.Getenv(key); v != "" {
			return isPlainLocale(v)
		}
	}
	return false
}

func isPlainLocale(v string) bool {
	v = strings.ToUpper(v)
	return v == "C" || v == "POSIX"
}

// InitSymbols re-reads the environment and resets every glyph.
func InitSymbols() {
	ascii := ASCIIOnly()
	for _, g := range glyphs {
		if ascii {
			*g.dst = g.ascii
		} else {
			*g.dst = g.unicode
		}
	}
}

func init() {
	InitSymbols()
}
