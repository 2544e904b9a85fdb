// Package clients reads and writes the semicolon-separated client record
// table and annotates each record with its zone membership.
package clients

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"zonecheck/zone"
)

// ResultColumn is the name of the boolean column appended on Annotate.
const ResultColumn = "InsideZone"

// Record is one client row. Fields holds the raw columns in input order;
// Point is nil when the coordinate cell could not be parsed.
type Record struct {
	Fields []string
	Point  *orb.Point
}

type Table struct {
	Header  []string
	Records []Record
}

// Summary counts the outcome of an Annotate pass.
type Summary struct {
	Total        int
	WithGeometry int
	Inside       int
	Outside      int
}

// Load reads the client CSV at path. The file is ;-separated UTF-8 with an
// optional byte-order mark and a mandatory header row containing coordColumn.
// A record whose coordinate cell doesn't parse keeps nil geometry and is
// logged, it never aborts the load. A missing file, unreadable CSV or missing
// coordinate column does.
func Load(path, coordColumn string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening client file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	r.Comma = ';'

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading client CSV %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("client CSV %s has no header row", path)
	}

	header := rows[0]
	col := -1
	for i, name := range header {
		if name == coordColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("client CSV %s has no %q column", path, coordColumn)
	}

	log := logrus.WithField("component", "clients")

	t := &Table{Header: header}
	for i, row := range rows[1:] {
		rec := Record{Fields: row}
		raw := row[col]
		p, err := zone.ParsePoint(raw)
		if err != nil {
			log.WithFields(logrus.Fields{
				"row":        i + 2, // 1-based, after the header
				"coordinate": raw,
			}).WithError(err).Warn("record has no usable geometry")
		} else {
			rec.Point = &p
		}
		t.Records = append(t.Records, rec)
	}

	return t, nil
}

// Annotate appends the ResultColumn to every record. Records without geometry
// are outside by definition, never an error.
func (t *Table) Annotate(zs *zone.Set) Summary {
	var s Summary

	t.Header = append(t.Header, ResultColumn)
	for i := range t.Records {
		rec := &t.Records[i]
		s.Total++

		inside := false
		if rec.Point != nil {
			s.WithGeometry++
			inside = zs.Contains(*rec.Point)
		}
		if inside {
			s.Inside++
		} else {
			s.Outside++
		}
		rec.Fields = append(rec.Fields, strconv.FormatBool(inside))
	}

	return s
}

// Write writes the table to path as ;-separated UTF-8 with a byte-order
// mark, rows in table order.
func Write(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	bw := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(bw)
	w.Comma = ';'

	if err := w.Write(t.Header); err != nil {
		f.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range t.Records {
		if err := w.Write(rec.Fields); err != nil {
			f.Close()
			return fmt.Errorf("writing record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing output: %w", err)
	}
	if err := bw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flushing output: %w", err)
	}
	return f.Close()
}
