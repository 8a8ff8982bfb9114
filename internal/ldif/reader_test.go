package ldif

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []*Entry {
	t.Helper()
	var entries []*Entry
	for {
		e, err := r.ReadEntry()
		require.NoError(t, err)
		if e == nil {
			return entries
		}
		entries = append(entries, e)
	}
}

func TestReaderBasic(t *testing.T) {
	input := `version: 1

# people
dn: uid=alice,ou=users,dc=example,dc=com
objectClass: top
objectClass: person
cn: Alice
CN: Alice Smith

dn: uid=bob,ou=users,dc=example,dc=com
cn: Bob`

	entries := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, entries, 2)

	alice := entries[0]
	assert.Equal(t, "uid=alice,ou=users,dc=example,dc=com", alice.DN)
	assert.Equal(t, []string{"objectClass", "cn"}, alice.AttributeNames())
	assert.Equal(t, [][]byte{[]byte("top"), []byte("person")}, alice.GetAttribute("objectclass"))
	assert.Equal(t, [][]byte{[]byte("Alice"), []byte("Alice Smith")}, alice.GetAttribute("cn"))

	assert.Equal(t, "Bob", entries[1].GetAttributeString("cn"))
}

func TestReaderFoldingAndComments(t *testing.T) {
	input := "dn: cn=folded,dc=exa\n mple,dc=com\n" +
		"# a comment\n  that is folded\n" +
		"description: first \n part\n" +
		"\r\n"

	entries := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, entries, 1)
	assert.Equal(t, "cn=folded,dc=example,dc=com", entries[0].DN)
	assert.Equal(t, "first part", entries[0].GetAttributeString("description"))
	assert.Equal(t, []string{"description"}, entries[0].AttributeNames())
}

func TestReaderVersionDirectlyFollowedByRecord(t *testing.T) {
	input := "version: 1\ndn: dc=example\ndc: example\n"
	entries := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, entries, 1)
	assert.False(t, entries[0].HasAttribute("version"))
}

func TestReaderBase64(t *testing.T) {
	input := "dn:: Y249SsO8cmdlbixkYz1leGFtcGxl\n" +
		"userPassword:: c2VjcmV0\n" +
		"cn: J\n"

	entries := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, entries, 1)
	assert.Equal(t, "cn=Jürgen,dc=example", entries[0].DN)
	assert.Equal(t, []byte("secret"), entries[0].GetAttribute("userPassword")[0])
}

func TestReaderFileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0x02}, 0o600))

	input := "dn: cn=photo\njpegPhoto:< file://" + path + "\n"
	entries := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, entries, 1)
	assert.Equal(t, []byte{0x00, 0x01, 0x02}, entries[0].GetAttribute("jpegPhoto")[0])
}

func TestReaderChangeTypeAdd(t *testing.T) {
	input := "dn: cn=new\nchangetype: add\ncn: new\n"
	entries := readAll(t, NewReader(strings.NewReader(input)))
	require.Len(t, entries, 1)
	assert.False(t, entries[0].HasAttribute("changetype"))
}

func TestReaderRecoverableErrors(t *testing.T) {
	tests := []struct {
		name   string
		record string
		line   int
		want   error
	}{
		{name: "missing dn", record: "cn: nobody\n", line: 1, want: ErrMissingDN},
		{name: "empty dn", record: "dn:\ncn: x\n", line: 1, want: ErrMissingDN},
		{name: "modify change", record: "dn: cn=x\nchangetype: modify\nreplace: cn\n", line: 2, want: ErrUnsupportedChangeType},
		{name: "bad base64", record: "dn: cn=x\ncn:: !!!\n", line: 2, want: ErrInvalidBase64},
		{name: "no colon", record: "dn: cn=x\ngarbage\n", line: 2, want: ErrInvalidLDIF},
		{name: "no attributes", record: "dn: cn=x\n", line: 1, want: ErrInvalidLDIF},
		{name: "http url", record: "dn: cn=x\ncn:< http://example.com/x\n", line: 2, want: ErrUnsupportedURL},
		{name: "leading continuation", record: " orphan\n", line: 1, want: ErrInvalidLDIF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.record + "\ndn: cn=next\ncn: next\n"
			r := NewReader(strings.NewReader(input))

			_, err := r.ReadEntry()
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, perr.MayContinueReading())
			assert.Equal(t, tt.line, perr.Line)

			next, err := r.ReadEntry()
			require.NoError(t, err)
			require.NotNil(t, next)
			assert.Equal(t, "cn=next", next.DN)
		})
	}
}

func TestReaderUnsupportedVersionIsFatal(t *testing.T) {
	r := NewReader(strings.NewReader("version: 2\n\ndn: cn=x\ncn: x\n"))

	_, err := r.ReadEntry()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.False(t, perr.MayContinueReading())

	_, again := r.ReadEntry()
	assert.Same(t, err, again)
}

func TestReaderLineTooLong(t *testing.T) {
	input := "dn: cn=x\ncn: " + strings.Repeat("a", 100) + "\n"
	r := NewReader(strings.NewReader(input), WithMaxLineLength(32))

	_, err := r.ReadEntry()
	assert.ErrorIs(t, err, ErrLineTooLong)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.False(t, perr.MayContinue)
	assert.Equal(t, 2, perr.Line)
}

func TestReaderIOErrorIsFatal(t *testing.T) {
	ioErr := errors.New("disk on fire")
	r := NewReader(iotest.ErrReader(ioErr))

	_, err := r.ReadEntry()
	assert.ErrorIs(t, err, ioErr)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.False(t, perr.MayContinueReading())
}

func TestReaderEmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader("\n\n# only a comment\n"))
	e, err := r.ReadEntry()
	assert.NoError(t, err)
	assert.Nil(t, e)
	assert.Equal(t, 3, r.LineNumber())
}

type trackingCloser struct {
	*strings.Reader
	closed int
}

func (c *trackingCloser) Close() error {
	c.closed++
	return nil
}

func TestReaderClose(t *testing.T) {
	src := &trackingCloser{Reader: strings.NewReader("")}
	r := NewReader(src)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, src.closed)

	assert.NoError(t, NewReader(strings.NewReader("")).Close())
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Line: 4, Message: `record starts with "cn"`, Err: ErrMissingDN}
	assert.Equal(t, `ldif: line 4: missing DN: record starts with "cn"`, err.Error())
}
