package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"k8s.io/cli-runtime/pkg/printers"

	"github.com/jetstack/tag-search/pkg/api"
)

// Format selects how rows are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"

	digestLength = 24
	dateLayout   = "2006-01-02"
)

var formats = []Format{FormatTable, FormatJSON, FormatCSV}

var tableHeader = []string{
	"TAG", "OS", "ARCH", "SIZE", "IMAGE PUSHED", "TAG PUSHED", "BYTES", "DIGEST", "IMAGE STATUS",
}

// ParseFormat returns the Format named by s, case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}

	return "", fmt.Errorf("unknown output format %q, must be one of %v", s, formats)
}

// Machine reports whether the format is meant for other programs to read.
func (f Format) Machine() bool {
	return f == FormatJSON || f == FormatCSV
}

// Write writes rows to w in format f.
func Write(w io.Writer, f Format, rows []api.Row) error {
	switch f {
	case FormatTable:
		return WriteTable(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// WriteTable writes a human readable table of rows. Nothing is written when
// there are no rows.
func WriteTable(w io.Writer, rows []api.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tw := printers.GetNewTabWriter(w)
	if _, err := fmt.Fprintln(tw, strings.Join(tableHeader, "\t")); err != nil {
		return err
	}

	for _, r := range rows {
		cells := []string{
			r.Name,
			r.OS(),
			r.Architecture(),
			units.HumanSize(float64(r.ImageSize)),
			formatDate(r.ImageLastPushed),
			formatDate(r.TagLastPushed),
			strconv.FormatInt(r.ImageSize, 10),
			shortDigest(r.ImageDigest),
			r.ImageStatus,
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// WriteJSON writes rows as a JSON array, missing values as null.
func WriteJSON(w io.Writer, rows []api.Row) error {
	if rows == nil {
		rows = []api.Row{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(rows)
}

// WriteCSV writes a header line followed by one record per row, missing
// values as empty cells. Nothing is written when there are no rows.
func WriteCSV(w io.Writer, rows []api.Row) error {
	if len(rows) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(rows[0].Columns()); err != nil {
		return err
	}

	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func shortDigest(digest *string) string {
	d := api.Deref(digest)
	if len(d) == 0 {
		return ""
	}
	if len(d) > digestLength {
		d = d[:digestLength]
	}
	return d + ".."
}
