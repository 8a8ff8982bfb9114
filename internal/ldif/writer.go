package ldif

import (
	"bufio"
	"encoding/base64"
	"io"
)

// DefaultWrapColumn is the line length at which the writer folds values.
const DefaultWrapColumn = 76

// Writer writes entries as LDIF content records.
type Writer struct {
	w          *bufio.Writer
	wrapColumn int
	count      int
}

// NewWriter creates a Writer folding lines at DefaultWrapColumn. A wrap
// column of zero or less disables folding.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), wrapColumn: DefaultWrapColumn}
}

// SetWrapColumn changes the folding column.
func (w *Writer) SetWrapColumn(n int) {
	w.wrapColumn = n
}

// WriteEntry writes one entry followed by a blank separator line.
func (w *Writer) WriteEntry(entry *Entry) error {
	if w.count > 0 {
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.writeValue("dn", []byte(entry.DN)); err != nil {
		return err
	}
	for _, attr := range entry.Attributes {
		for _, value := range attr.Values {
			if err := w.writeValue(attr.Name, value); err != nil {
				return err
			}
		}
	}
	w.count++
	return w.w.Flush()
}

// WriteEntries writes all entries.
func (w *Writer) WriteEntries(entries []*Entry) error {
	for _, e := range entries {
		if err := w.WriteEntry(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeValue(name string, value []byte) error {
	var line string
	if needsBase64Encoding(value) {
		line = name + ":: " + base64.StdEncoding.EncodeToString(value)
	} else {
		line = name + ": " + string(value)
	}
	return w.writeFolded(line)
}

// writeFolded writes line, continuing it on lines that start with a space
// once it exceeds the wrap column.
func (w *Writer) writeFolded(line string) error {
	if w.wrapColumn <= 1 || len(line) <= w.wrapColumn {
		_, err := w.w.WriteString(line + "\n")
		return err
	}

	if _, err := w.w.WriteString(line[:w.wrapColumn] + "\n"); err != nil {
		return err
	}
	rest := line[w.wrapColumn:]
	width := w.wrapColumn - 1
	for len(rest) > 0 {
		n := min(width, len(rest))
		if _, err := w.w.WriteString(" " + rest[:n] + "\n"); err != nil {
			return err
		}
		rest = rest[n:]
	}
	return nil
}

// needsBase64Encoding checks if a value needs base64 encoding.
// According to RFC 2849, values need base64 encoding if they:
// - Start with a space, colon, or less-than sign
// - End with a space
// - Contain NUL, CR, LF or any byte outside printable ASCII
func needsBase64Encoding(value []byte) bool {
	if len(value) == 0 {
		return false
	}

	first := value[0]
	if first == ' ' || first == ':' || first == '<' {
		return true
	}
	if value[len(value)-1] == ' ' {
		return true
	}

	for _, b := range value {
		if b < 0x20 || b > 0x7E {
			return true
		}
	}

	return false
}
