package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/gosimple/slug"
	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrFileMissing reports an input file that does not exist.
var ErrFileMissing = errors.New("file_missing")

// NormalizeHeader lower-cases a header cell and folds every run of
// non-alphanumerics into a single underscore.
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(slug.Make(strings.TrimSpace(h)), "-", "_")
}

// RecordReader yields decoded rows until io.EOF.
type RecordReader[T any] interface {
	Next() (T, error)
}

// Reader decodes a CSV file into T, one row per Next call.
type Reader[T any] struct {
	file   *os.File
	dec    *csvutil.Decoder
	header []string
}

// OpenCSV opens path and prepares a decoder. A UTF-8 BOM is stripped and
// header cells are normalized. When surrogate is non-empty, column 0 is
// renamed to it regardless of what the file calls it.
func OpenCSV[T any](path, surrogate string) (*Reader[T], error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, path)
		}
		return nil, err
	}

	decoded := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	raw, err := cr.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header %s: empty file", path)
		}
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}

	header := make([]string, len(raw))
	for i, cell := range raw {
		header[i] = NormalizeHeader(cell)
	}
	if surrogate != "" && len(header) > 0 {
		header[0] = surrogate
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoder %s: %w", path, err)
	}

	return &Reader[T]{file: f, dec: dec, header: header}, nil
}

func (r *Reader[T]) Header() []string {
	return r.header
}

func (r *Reader[T]) Next() (T, error) {
	var rec T
	err := r.dec.Decode(&rec)
	return rec, err
}

func (r *Reader[T]) Close() error {
	return r.file.Close()
}

// ReadAll decodes every row of path. A missing file yields ErrFileMissing.
func ReadAll[T any](path, surrogate string) ([]T, error) {
	r, err := OpenCSV[T](path, surrogate)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []T
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", path, len(out)+2, err)
		}
		out = append(out, rec)
	}
}
