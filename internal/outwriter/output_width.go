package outwriter

import (
	"os"

	"github.com/huangsam/signalboard/internal/contract"
	"golang.org/x/term"
)

const (
	fallbackTermWidth = 80
	cellsPerColumn    = 12
	tableChrome       = 10
	minIDWidth        = 12
	maxIDWidth        = 48
)

// terminalWidth prefers --width, then the attached terminal, then a narrow default.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallbackTermWidth
}

// idColumnWidth is what remains for the ID column once the other columns
// have their share, kept between minIDWidth and maxIDWidth.
func idColumnWidth(termWidth, otherColumns int) int {
	return min(max(termWidth-otherColumns*cellsPerColumn-tableChrome, minIDWidth), maxIDWidth)
}

// GetMaxTableIDWidth returns how many cells account and project IDs may use in table output.
func GetMaxTableIDWidth(cfg *contract.Config, otherColumns int) int {
	return idColumnWidth(terminalWidth(cfg), otherColumns)
}
