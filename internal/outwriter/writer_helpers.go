package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// byteCounter tracks how much a renderer wrote to a file.
type byteCounter struct {
	w io.Writer
	n int64
}

func (c *byteCounter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeWithFile runs render against stdout, or against outputFile when one is
// set. A file is closed before the save notice goes to stderr, so a failed
// flush surfaces as an error instead of a half-written report.
func writeWithFile(outputFile string, render func(io.Writer) error, what string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file == os.Stdout {
		return render(file)
	}

	counter := &byteCounter{w: file}
	if err := render(counter); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", outputFile, err)
	}
	fmt.Fprintf(os.Stderr, "💾 %s to %s (%d bytes)\n", what, outputFile, counter.n)
	return nil
}

// writeJSON emits data indented by two spaces with a trailing newline.
func writeJSON(w io.Writer, data any) error {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = w.Write(append(body, '\n'))
	return err
}

// writeCSVWithHeader writes header, then lets writeRows fill in the records.
// Errors buffered by the csv writer are reported after the final flush.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func renderTable(w io.Writer, headers []string, data [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// numberFormat renders scores at the configured precision and counts as plain integers.
type numberFormat struct {
	precision int
}

func newNumberFormat(precision int) numberFormat {
	return numberFormat{precision: max(precision, 0)}
}

func (f numberFormat) num(v float64) string {
	return strconv.FormatFloat(v, 'f', f.precision, 64)
}

func (f numberFormat) count(v int) string {
	return strconv.Itoa(v)
}

// bandLabel returns the trust band label, colored only when enabled.
func bandLabel(band schema.TrustBand, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(band)
	}
	return contract.GetPlainLabel(band)
}

func errParquetUnsupported(what string) error {
	return fmt.Errorf("parquet output is only available for authority and mindshare snapshots, not %s", what)
}
