package ldif

import "strings"

// Attribute is an attribute of an entry with its values in file order.
type Attribute struct {
	Name   string
	Values [][]byte
}

// Entry is a directory entry read from or written to LDIF.
type Entry struct {
	DN         string
	Attributes []Attribute
}

// NewEntry creates a new entry with the given DN and no attributes.
func NewEntry(dn string) *Entry {
	return &Entry{DN: dn}
}

// AddAttributeValue appends a value to the named attribute, creating the
// attribute if needed. Names are matched case-insensitively and keep the
// spelling of their first occurrence.
func (e *Entry) AddAttributeValue(name string, value []byte) {
	if i := e.index(name); i >= 0 {
		e.Attributes[i].Values = append(e.Attributes[i].Values, value)
		return
	}
	e.Attributes = append(e.Attributes, Attribute{Name: name, Values: [][]byte{value}})
}

// GetAttribute returns the values of the named attribute, or nil.
func (e *Entry) GetAttribute(name string) [][]byte {
	if i := e.index(name); i >= 0 {
		return e.Attributes[i].Values
	}
	return nil
}

// GetAttributeString returns the first value of the named attribute as a
// string, or "" if the attribute is absent.
func (e *Entry) GetAttributeString(name string) string {
	values := e.GetAttribute(name)
	if len(values) == 0 {
		return ""
	}
	return string(values[0])
}

// HasAttribute reports whether the entry has the named attribute.
func (e *Entry) HasAttribute(name string) bool {
	return e.index(name) >= 0
}

// AttributeNames returns the attribute names in first-seen order.
func (e *Entry) AttributeNames() []string {
	names := make([]string, len(e.Attributes))
	for i, a := range e.Attributes {
		names[i] = a.Name
	}
	return names
}

func (e *Entry) index(name string) int {
	for i, a := range e.Attributes {
		if strings.EqualFold(a.Name, name) {
			return i
		}
	}
	return -1
}
