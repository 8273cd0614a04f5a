package biasednonce

import (
	"bufio"
	"encoding/csv"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/mahdiidarabi/ecdsa-biased/internal/parser"
)

// Entry is one record of a signing transcript.
type Entry struct {
	Label      string
	R          *big.Int // nil when the record carries no integer r
	S          *big.Int // nil when the record carries no integer s
	Extra      *big.Int // third element when it is an integer (the encrypted flag)
	ExtraBytes []byte   // third element when it is a bytes literal
}

// Ciphertext returns the third element of the record as ciphertext bytes.
func (e *Entry) Ciphertext() ([]byte, error) {
	switch {
	case e.ExtraBytes != nil:
		return e.ExtraBytes, nil
	case e.Extra != nil:
		return CiphertextBytes(e.Extra), nil
	}
	return nil, errors.Wrapf(ErrParse, "record %q carries no ciphertext", e.Label)
}

// Signature returns the record's (r, s) paired with the hash z.
func (e *Entry) Signature(z *big.Int) (*Signature, error) {
	if e.R == nil || e.S == nil {
		return nil, errors.Wrapf(ErrParse, "record %q carries no signature", e.Label)
	}
	return &Signature{R: e.R, S: e.S, Z: z}, nil
}

// TranscriptParser defines the interface for reading transcripts from
// various sources.
type TranscriptParser interface {
	// ParseTranscript parses every record of a source, in order.
	ParseTranscript(source string) ([]*Entry, error)
}

// LineParser parses the native transcript format, one
// "<label>: (<r>, <s>, <extra>)" record per line. Blank lines are skipped.
type LineParser struct{}

// ParseTranscript parses a line transcript file.
func (p *LineParser) ParseTranscript(path string) ([]*Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open transcript")
	}
	defer file.Close()
	return p.Parse(file)
}

// Parse reads records from r.
func (p *LineParser) Parse(r io.Reader) ([]*Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var entries []*Entry
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := parser.ParseRecord(line)
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "line %d: %v", lineNo, err)
		}
		entry, err := entryFromValues(rec.Label, rec.Values)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read transcript")
	}
	return entries, nil
}

func entryFromValues(label string, values []parser.Value) (*Entry, error) {
	if len(values) != 3 {
		return nil, errors.Wrapf(ErrParse, "record %q has %d elements, want 3", label, len(values))
	}
	e := &Entry{Label: label}
	if values[0].Kind == parser.KindInt {
		e.R = values[0].Int
	}
	if values[1].Kind == parser.KindInt {
		e.S = values[1].Int
	}
	switch values[2].Kind {
	case parser.KindInt:
		e.Extra = values[2].Int
	case parser.KindBytes:
		e.ExtraBytes = values[2].Bytes
	}
	return e, nil
}

// JSONParser parses transcripts stored as a JSON array of objects.
type JSONParser struct {
	LabelField string // Field name for the label (default: "label")
	RField     string // Field name for r (default: "r")
	SField     string // Field name for s (default: "s")
	ExtraField string // Field name for the third element (default: "extra")
}

// ParseTranscript parses a JSON transcript.
//
// Expected format:
// [
//
//	{"label": "Bob", "r": 123, "s": "0x1c8", "extra": null},
//	{"label": "flag", "r": null, "s": null, "extra": "98765"}
//
// ]
//
// Numbers are read from their raw tokens so that integers of any size stay
// exact.
func (p *JSONParser) ParseTranscript(path string) ([]*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(ErrParse, "invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, errors.Wrap(ErrParse, "transcript must be a JSON array")
	}

	labelField := fieldOr(p.LabelField, "label")
	rField := fieldOr(p.RField, "r")
	sField := fieldOr(p.SField, "s")
	extraField := fieldOr(p.ExtraField, "extra")

	var entries []*Entry
	var parseErr error
	doc.ForEach(func(_, item gjson.Result) bool {
		e := &Entry{Label: item.Get(labelField).String()}
		if e.R, parseErr = jsonInt(item.Get(rField)); parseErr != nil {
			parseErr = errors.Wrapf(parseErr, "record %d: r", len(entries))
			return false
		}
		if e.S, parseErr = jsonInt(item.Get(sField)); parseErr != nil {
			parseErr = errors.Wrapf(parseErr, "record %d: s", len(entries))
			return false
		}
		if e.Extra, parseErr = jsonInt(item.Get(extraField)); parseErr != nil {
			parseErr = errors.Wrapf(parseErr, "record %d: extra", len(entries))
			return false
		}
		entries = append(entries, e)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return entries, nil
}

// jsonInt reads an integer from a number or string token. Missing and null
// values yield nil.
func jsonInt(v gjson.Result) (*big.Int, error) {
	switch v.Type {
	case gjson.Null:
		return nil, nil
	case gjson.Number:
		z, ok := new(big.Int).SetString(v.Raw, 10)
		if !ok {
			return nil, errors.Wrapf(ErrParse, "not an integer: %s", v.Raw)
		}
		return z, nil
	case gjson.String:
		z, err := parser.ParseBigInt(v.Str)
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "%v", err)
		}
		return z, nil
	}
	return nil, errors.Wrapf(ErrParse, "unexpected JSON value %s", v.Raw)
}

// CSVParser parses transcripts stored as CSV with a header row.
type CSVParser struct {
	LabelCol string // Column name for the label (default: "label")
	RCol     string // Column name for r (default: "r")
	SCol     string // Column name for s (default: "s")
	ExtraCol string // Column name for the third element (default: "extra")
}

// ParseTranscript parses a CSV transcript. Empty cells are treated as
// missing values.
func (p *CSVParser) ParseTranscript(path string) ([]*Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(ErrParse, "failed to read header")
	}

	cols := map[string]int{}
	for i, col := range header {
		cols[strings.TrimSpace(col)] = i
	}
	labelIdx, hasLabel := cols[fieldOr(p.LabelCol, "label")]
	rIdx, hasR := cols[fieldOr(p.RCol, "r")]
	sIdx, hasS := cols[fieldOr(p.SCol, "s")]
	extraIdx, hasExtra := cols[fieldOr(p.ExtraCol, "extra")]
	if !hasR || !hasS {
		return nil, errors.Wrap(ErrParse, "missing required columns: r or s")
	}

	cell := func(record []string, idx int, ok bool) (*big.Int, error) {
		if !ok || idx >= len(record) || strings.TrimSpace(record[idx]) == "" {
			return nil, nil
		}
		z, err := parser.ParseBigInt(record[idx])
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "%v", err)
		}
		return z, nil
	}

	var entries []*Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "failed to read record: %v", err)
		}

		e := &Entry{}
		if hasLabel && labelIdx < len(record) {
			e.Label = record[labelIdx]
		}
		if e.R, err = cell(record, rIdx, hasR); err != nil {
			return nil, err
		}
		if e.S, err = cell(record, sIdx, hasS); err != nil {
			return nil, err
		}
		if e.Extra, err = cell(record, extraIdx, hasExtra); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func fieldOr(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
