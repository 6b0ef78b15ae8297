// Package ledger accumulates the bytes released through each tracked link of
// a simulated network and writes them out as a CSV report.
package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// DefaultReportFile is the file name the report is written to unless another
// one is configured.
const DefaultReportFile = "core_link_bytes.csv"

var reportHeader = []string{"link_name", "total_bytes"}

// Entry is the cumulative byte count of one link.
type Entry struct {
	Link  string `json:"link"`
	Bytes uint64 `json:"bytes"`
}

// Ledger maps link identities to the cumulative number of bytes released
// through them. Entries are never removed. A Ledger is safe for concurrent
// use.
type Ledger struct {
	mu    sync.RWMutex
	bytes map[string]uint64
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{bytes: make(map[string]uint64)}
}

// Record adds n bytes to the total of the link.
func (l *Ledger) Record(link string, n uint64) {
	l.mu.Lock()
	l.bytes[link] += n
	l.mu.Unlock()
}

// Total returns the bytes accumulated for the link and whether the link has
// an entry.
func (l *Ledger) Total(link string) (uint64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n, ok := l.bytes[link]

	return n, ok
}

// Links returns the identities of all links in the ledger, sorted.
func (l *Ledger) Links() []string {
	l.mu.RLock()
	links := make([]string, 0, len(l.bytes))
	for link := range l.bytes {
		links = append(links, link)
	}
	l.mu.RUnlock()

	sort.Strings(links)

	return links
}

// Snapshot returns all entries sorted by link identity.
func (l *Ledger) Snapshot() []Entry {
	l.mu.RLock()
	entries := make([]Entry, 0, len(l.bytes))
	for link, n := range l.bytes {
		entries = append(entries, Entry{Link: link, Bytes: n})
	}
	l.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Link < entries[j].Link
	})

	return entries
}

// Emit writes the report to w. The ledger is not modified, so repeated calls
// without new records produce identical output.
func (l *Ledger) Emit(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(reportHeader); err != nil {
		return err
	}

	for _, e := range l.Snapshot() {
		err := cw.Write([]string{e.Link, strconv.FormatUint(e.Bytes, 10)})
		if err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteFile writes the report to the file at path, replacing its content.
func (l *Ledger) WriteFile(path string) (re error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if err := f.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}()

	w := bufio.NewWriter(f)
	if err := l.Emit(w); err != nil {
		return err
	}

	return w.Flush()
}

// ReadReport parses a report produced by Emit into a new ledger.
func ReadReport(r io.Reader) (*Ledger, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) < 1 {
		return nil, errors.New("ledger: no header found")
	}

	if len(rows[0]) != 2 ||
		rows[0][0] != reportHeader[0] || rows[0][1] != reportHeader[1] {
		return nil, fmt.Errorf("ledger: unexpected header %v", rows[0])
	}

	l := New()
	for i, row := range rows[1:] {
		if len(row) != 2 {
			return nil, fmt.Errorf("ledger: row %d has %d fields", i+2, len(row))
		}

		n, err := strconv.ParseUint(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ledger: row %d: %w", i+2, err)
		}

		l.Record(row[0], n)
	}

	return l, nil
}

// ReadReportFile parses the report file at path.
func ReadReportFile(path string) (l *Ledger, re error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := f.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}()

	return ReadReport(f)
}
