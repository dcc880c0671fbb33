package gamedata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ParseHexColor converts a hex color string (e.g., "#FF0000" or "FF0000") to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) != 6 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color length: %s", hex)
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %s: %w", hex, err)
	}

	return tcell.NewHexColor(int32(value)), nil
}

// ANSIForeground returns the 24-bit escape sequence that sets color as the
// terminal foreground. Colors without RGB components yield an empty string.
func ANSIForeground(color tcell.Color) string {
	r, g, b := color.RGB()
	if r < 0 || g < 0 || b < 0 {
		return ""
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
}

// ANSIReset clears any escape-sequence styling.
const ANSIReset = "\x1b[0m"
