package ldif

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// DefaultMaxLineLength is the longest physical line a Reader accepts.
const DefaultMaxLineLength = 1 << 20

// LDIF errors.
var (
	ErrInvalidLDIF           = errors.New("ldif: invalid LDIF format")
	ErrMissingDN             = errors.New("ldif: missing DN")
	ErrInvalidBase64         = errors.New("ldif: invalid base64 encoding")
	ErrUnsupportedChangeType = errors.New("ldif: unsupported change type")
	ErrUnsupportedVersion    = errors.New("ldif: unsupported LDIF version")
	ErrUnsupportedURL        = errors.New("ldif: unsupported URL")
	ErrLineTooLong           = errors.New("ldif: line too long")
)

// ParseError describes a failure to read an LDIF record. MayContinue is set
// when the offending record was skipped and reading can resume with the next
// one.
type ParseError struct {
	Line        int
	Message     string
	MayContinue bool
	Err         error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ldif: line %d", e.Line)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(strings.TrimPrefix(e.Err.Error(), "ldif: "))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// MayContinueReading reports whether the reader can be used after this error.
func (e *ParseError) MayContinueReading() bool {
	return e.MayContinue
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxLineLength sets the longest physical line the reader accepts.
func WithMaxLineLength(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.maxLineLength = n
		}
	}
}

// Reader reads LDIF content records one at a time. Change records other
// than "changetype: add" are rejected.
type Reader struct {
	scanner       *bufio.Scanner
	closer        io.Closer
	maxLineLength int
	line          int
	first         bool
	eof           bool
	err           error
}

type logicalLine struct {
	text string
	num  int
}

// NewReader creates a Reader over src. If src is an io.Closer, Close closes it.
func NewReader(src io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{maxLineLength: DefaultMaxLineLength, first: true}
	for _, opt := range opts {
		opt(r)
	}

	r.scanner = bufio.NewScanner(src)
	r.scanner.Buffer(make([]byte, 0, min(4096, r.maxLineLength)), r.maxLineLength)
	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// LineNumber returns the number of physical lines consumed so far.
func (r *Reader) LineNumber() int {
	return r.line
}

// ReadEntry returns the next entry, or nil when the input is exhausted. A
// *ParseError with MayContinue set means the record was skipped; any other
// error is returned again by every later call.
func (r *Reader) ReadEntry() (*Entry, error) {
	for {
		if r.err != nil {
			return nil, r.err
		}
		if r.eof {
			return nil, nil
		}

		lines, err := r.readRecord()
		if err != nil {
			r.err = err
			return nil, err
		}
		if len(lines) == 0 {
			return nil, nil
		}

		if r.first {
			r.first = false
			lines, err = readVersion(lines)
			if err != nil {
				r.err = err
				return nil, err
			}
			if len(lines) == 0 {
				continue
			}
		}

		return parseRecord(lines)
	}
}

// Close closes the underlying source if it is an io.Closer.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}

// readRecord collects the unfolded lines of the next record, skipping
// comments and leading blank lines.
func (r *Reader) readRecord() ([]logicalLine, error) {
	var lines []logicalLine
	inComment := false

	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()

		switch {
		case text == "":
			inComment = false
			if len(lines) > 0 {
				return lines, nil
			}
		case text[0] == ' ':
			if inComment {
				continue
			}
			if len(lines) == 0 {
				lines = append(lines, logicalLine{text: text, num: r.line})
				continue
			}
			lines[len(lines)-1].text += text[1:]
		case text[0] == '#':
			inComment = true
		default:
			inComment = false
			lines = append(lines, logicalLine{text: text, num: r.line})
		}
	}

	if err := r.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{
				Line:    r.line + 1,
				Message: fmt.Sprintf("exceeds %d bytes", r.maxLineLength),
				Err:     ErrLineTooLong,
			}
		}
		return nil, &ParseError{Line: r.line, Err: err}
	}

	r.eof = true
	return lines, nil
}

func readVersion(lines []logicalLine) ([]logicalLine, error) {
	name, value, ok := strings.Cut(lines[0].text, ":")
	if !ok || !strings.EqualFold(name, "version") {
		return lines, nil
	}
	if v := strings.TrimSpace(value); v != "1" {
		return nil, &ParseError{Line: lines[0].num, Message: fmt.Sprintf("version %q", v), Err: ErrUnsupportedVersion}
	}
	return lines[1:], nil
}

func parseRecord(lines []logicalLine) (*Entry, error) {
	first := lines[0]
	name, value, err := parseLine(first.text)
	if err != nil {
		return nil, skipped(first.num, "", err)
	}
	if !strings.EqualFold(name, "dn") {
		return nil, skipped(first.num, fmt.Sprintf("record starts with %q", name), ErrMissingDN)
	}
	if len(value) == 0 {
		return nil, skipped(first.num, "empty dn", ErrMissingDN)
	}

	entry := NewEntry(string(value))
	for i, l := range lines[1:] {
		name, value, err := parseLine(l.text)
		if err != nil {
			return nil, skipped(l.num, "", err)
		}
		if strings.EqualFold(name, "changetype") {
			if i == 0 && strings.EqualFold(strings.TrimSpace(string(value)), "add") {
				continue
			}
			return nil, skipped(l.num, fmt.Sprintf("changetype %q in entry %q", value, entry.DN), ErrUnsupportedChangeType)
		}
		entry.AddAttributeValue(name, value)
	}

	if len(entry.Attributes) == 0 {
		return nil, skipped(first.num, fmt.Sprintf("entry %q has no attributes", entry.DN), ErrInvalidLDIF)
	}
	return entry, nil
}

func skipped(line int, msg string, err error) *ParseError {
	return &ParseError{Line: line, Message: msg, MayContinue: true, Err: err}
}

// parseLine splits an attribute line into its name and decoded value.
func parseLine(text string) (string, []byte, error) {
	colon := strings.IndexByte(text, ':')
	if colon <= 0 {
		return "", nil, fmt.Errorf("%w: expected \"name: value\"", ErrInvalidLDIF)
	}
	name := text[:colon]
	if strings.ContainsRune(name, ' ') {
		return "", nil, fmt.Errorf("%w: invalid attribute name %q", ErrInvalidLDIF, name)
	}
	rest := text[colon+1:]

	switch {
	case strings.HasPrefix(rest, ":"):
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rest[1:]))
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
		}
		return name, decoded, nil
	case strings.HasPrefix(rest, "<"):
		data, err := readURL(strings.TrimSpace(rest[1:]))
		if err != nil {
			return "", nil, err
		}
		return name, data, nil
	default:
		return name, []byte(strings.TrimLeft(rest, " ")), nil
	}
}

// readURL loads a value referenced with "name:< file:///path".
func readURL(raw string) ([]byte, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if u.Scheme != "file" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
	}
	data, err := os.ReadFile(u.Path)
	if err != nil {
		return nil, fmt.Errorf("ldif: read %s: %w", raw, err)
	}
	return data, nil
}
