package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/signalboard/schema"
)

// Trust band label constants.
const (
	TrustedValue    = "Trusted"  // band A
	SolidValue      = "Solid"    // band B
	EmergingValue   = "Emerging" // band C
	UnprovenValue   = "Unproven" // band D
	SmartValue      = "smart"    // smart account marker
	EstimateMarker  = "~"        // prefix for estimated values
	MissingValueStr = "-"        // placeholder for absent values
)

// Color variables for console output.
var (
	TrustedColor  = color.New(color.FgGreen, color.Bold) // TrustedColor marks the most reliable creators.
	SolidColor    = color.New(color.FgCyan, color.Bold)  // SolidColor marks consistently good creators.
	EmergingColor = color.New(color.FgYellow)            // EmergingColor is standard caution, not bold.
	UnprovenColor = color.New(color.FgRed)               // UnprovenColor marks little or poor signal.
)

// GetPlainLabel returns a plain text label for a trust band. This is the core
// logic used for CSV, JSON, and table printing.
func GetPlainLabel(band schema.TrustBand) string {
	switch band {
	case schema.BandA:
		return TrustedValue
	case schema.BandB:
		return SolidValue
	case schema.BandC:
		return EmergingValue
	default:
		return UnprovenValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(band schema.TrustBand) string {
	text := GetPlainLabel(band)

	switch band {
	case schema.BandA:
		return TrustedColor.Sprint(text)
	case schema.BandB:
		return SolidColor.Sprint(text)
	case schema.BandC:
		return EmergingColor.Sprint(text)
	default:
		return UnprovenColor.Sprint(text)
	}
}

// FormatSmartFollowers renders a Smart-Followers value for tables.
// Estimates are prefixed so they are never mistaken for graph counts.
func FormatSmartFollowers(sf schema.SmartFollowers, precision int) string {
	switch v := sf.(type) {
	case schema.Exact:
		return fmt.Sprintf("%d (%.*f%%)", v.N, precision, v.Percent)
	case schema.Estimate:
		return fmt.Sprintf("%s%d (%.*f%%)", EstimateMarker, v.N, precision, v.Percent)
	default:
		return MissingValueStr
	}
}

// FormatDelta renders an optional delta with an explicit sign.
func FormatDelta(d *int) string {
	if d == nil {
		return MissingValueStr
	}
	return fmt.Sprintf("%+d", *d)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetSnapshotDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetSnapshotDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".signalboard.db"
	}
	return filepath.Join(homeDir, ".signalboard.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one rune.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
