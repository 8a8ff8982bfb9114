package ldif

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterOutput(t *testing.T) {
	a := NewEntry("cn=a,dc=example")
	a.AddAttributeValue("cn", []byte("a"))
	a.AddAttributeValue("description", []byte(" leading space"))
	b := NewEntry("cn=b,dc=example")
	b.AddAttributeValue("cn", []byte("b"))

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteEntries([]*Entry{a, b}))

	want := "dn: cn=a,dc=example\n" +
		"cn: a\n" +
		"description:: IGxlYWRpbmcgc3BhY2U=\n" +
		"\n" +
		"dn: cn=b,dc=example\n" +
		"cn: b\n"
	assert.Equal(t, want, buf.String())
}

func TestWriterFolding(t *testing.T) {
	e := NewEntry("cn=x")
	e.AddAttributeValue("cn", []byte("abcdefghijklmnop"))

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.SetWrapColumn(10)
	require.NoError(t, w.WriteEntry(e))
	assert.Equal(t, "dn: cn=x\ncn: abcdef\n ghijklmno\n p\n", buf.String())

	entries := readAll(t, NewReader(strings.NewReader(buf.String())))
	require.Len(t, entries, 1)
	assert.Equal(t, "abcdefghijklmnop", entries[0].GetAttributeString("cn"))
}

func TestWriterReaderRoundTrip(t *testing.T) {
	e := NewEntry("cn=Jürgen,dc=example")
	e.AddAttributeValue("objectClass", []byte("person"))
	e.AddAttributeValue("userCertificate;binary", []byte{0x30, 0x82, 0x00, 0x0A})
	e.AddAttributeValue("description", []byte(strings.Repeat("long value ", 20)))

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteEntry(e))

	entries := readAll(t, NewReader(&buf))
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
}

func TestWriterEmptyValue(t *testing.T) {
	e := NewEntry("cn=x")
	e.AddAttributeValue("description", []byte{})

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteEntry(e))
	assert.Equal(t, "dn: cn=x\ndescription: \n", buf.String())

	entries := readAll(t, NewReader(&buf))
	require.Len(t, entries, 1)
	values := entries[0].GetAttribute("description")
	require.Len(t, values, 1)
	assert.Empty(t, values[0])
}

func TestNeedsBase64Encoding(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"plain", false},
		{"with inner space", false},
		{" leading", true},
		{":colon", true},
		{"<angle", true},
		{"trailing ", true},
		{"line\nbreak", true},
		{"nul\x00", true},
		{"ünïcode", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, needsBase64Encoding([]byte(tt.value)), "%q", tt.value)
	}
}
