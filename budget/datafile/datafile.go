// Package datafile reads and writes the JSON document holding a household's
// transaction log, recurring rules and reference lists.
package datafile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/budget"
	date "github.com/joyt/godate"
)

// Version is the payload version written by Encode.
const Version = 1

var ErrUnsupportedVersion = errors.New("unsupported data file version")

// Data is the household's state. Categories, banks and account types are
// kept verbatim since only the host UI interprets them.
type Data struct {
	Expenses     []budget.Transaction    `json:"expenses"`
	Categories   json.RawMessage         `json:"categories,omitempty"`
	Banks        json.RawMessage         `json:"banks,omitempty"`
	AccountTypes json.RawMessage         `json:"accountTypes,omitempty"`
	People       []string                `json:"people"`
	Recurring    []budget.RecurrenceRule `json:"recurring"`
}

type File struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Data       Data      `json:"data"`
}

// New returns an empty version 1 file.
func New() *File {
	return &File{Version: Version}
}

// Decoder reads a data file from an input stream.
type Decoder struct {
	r io.Reader
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads the whole document. Dates on transactions and rules that are
// not already YYYY-MM-DD are normalized when their layout can be guessed,
// and left alone otherwise.
func (d *Decoder) Decode() (*File, error) {
	var f File
	if err := json.NewDecoder(d.r).Decode(&f); err != nil {
		return nil, err
	}
	if f.Version == 0 {
		f.Version = Version
	}
	if f.Version != Version {
		return nil, fmt.Errorf("version %d: %w", f.Version, ErrUnsupportedVersion)
	}

	for i := range f.Data.Expenses {
		t := &f.Data.Expenses[i]
		t.Date = normalizeDate(t.Date)
		t.IsPreview = false
	}
	for i := range f.Data.Recurring {
		r := &f.Data.Recurring[i]
		r.StartDate = normalizeDate(r.StartDate)
		r.NextDate = normalizeDate(r.NextDate)
	}
	return &f, nil
}

func normalizeDate(s string) string {
	if s == "" || budget.IsDate(s) {
		return s
	}
	t, _, err := date.ParseAndGetLayout(s)
	if err != nil {
		return s
	}
	return t.Format(budget.DateLayout)
}

// Encoder writes a data file to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes f as indented JSON. Preview rows are never written.
func (e *Encoder) Encode(f *File) error {
	out := *f
	out.Version = Version
	out.Data.Expenses = make([]budget.Transaction, 0, len(f.Data.Expenses))
	for _, t := range f.Data.Expenses {
		if !t.IsPreview {
			out.Data.Expenses = append(out.Data.Expenses, t)
		}
	}
	if out.Data.People == nil {
		out.Data.People = []string{}
	}
	if out.Data.Recurring == nil {
		out.Data.Recurring = []budget.RecurrenceRule{}
	}

	enc := json.NewEncoder(e.w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}

// Load reads the data file at path. A missing file yields an empty file.
func Load(path string) (*File, error) {
	fileReader, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	f, err := NewDecoder(fileReader).Decode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Save replaces the data file at path with f. The document is written to a
// temporary file in the same directory and renamed over path, so readers
// see either the old or the new contents.
func Save(path string, f *File) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	out := *f
	out.ExportedAt = time.Now().UTC().Truncate(time.Second)
	if err := NewEncoder(tmp).Encode(&out); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
