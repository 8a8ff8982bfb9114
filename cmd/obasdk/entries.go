package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KilimcininKorOglu/obasdk/internal/ldif"
)

// Output formats for the entries command.
const (
	formatLDIF = "ldif"
	formatJSON = "json"
	formatYAML = "yaml"
	formatCBOR = "cbor"
)

// errSkippedEntries is returned when --stop-on-error ends a read early.
var errSkippedEntries = errors.New("stopped at unreadable entry")

// cborEncMode produces deterministic CBOR so identical inputs give identical
// output.
var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cbor encoder init: " + err.Error())
	}
	return em
}()

// entryRecord is the structured form of an entry for JSON and YAML output.
// Values that are not valid UTF-8 are carried base64 encoded in Binary.
type entryRecord struct {
	DN         string            `json:"dn" yaml:"dn"`
	Attributes []attributeRecord `json:"attributes" yaml:"attributes"`
}

type attributeRecord struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
	Binary []string `json:"binary,omitempty" yaml:"binary,omitempty"`
}

// cborRecord keeps raw values, which CBOR carries as byte strings.
type cborRecord struct {
	DN         string          `cbor:"dn"`
	Attributes []cborAttribute `cbor:"attributes"`
}

type cborAttribute struct {
	Name   string   `cbor:"name"`
	Values [][]byte `cbor:"values"`
}

func newEntryRecord(e *ldif.Entry) entryRecord {
	rec := entryRecord{DN: e.DN, Attributes: make([]attributeRecord, 0, len(e.Attributes))}
	for _, attr := range e.Attributes {
		ar := attributeRecord{Name: attr.Name}
		for _, v := range attr.Values {
			if utf8.Valid(v) {
				ar.Values = append(ar.Values, string(v))
			} else {
				ar.Binary = append(ar.Binary, base64.StdEncoding.EncodeToString(v))
			}
		}
		rec.Attributes = append(rec.Attributes, ar)
	}
	return rec
}

func newCBORRecord(e *ldif.Entry) cborRecord {
	rec := cborRecord{DN: e.DN, Attributes: make([]cborAttribute, 0, len(e.Attributes))}
	for _, attr := range e.Attributes {
		rec.Attributes = append(rec.Attributes, cborAttribute{Name: attr.Name, Values: attr.Values})
	}
	return rec
}

// entryEncoder writes one entry in the selected output format.
type entryEncoder func(e *ldif.Entry) error

func newEntryEncoder(w io.Writer, format string, wrapColumn int) (entryEncoder, func() error, error) {
	noop := func() error { return nil }
	switch format {
	case formatLDIF:
		lw := ldif.NewWriter(w)
		lw.SetWrapColumn(wrapColumn)
		return lw.WriteEntry, noop, nil
	case formatJSON:
		enc := json.NewEncoder(w)
		return func(e *ldif.Entry) error { return enc.Encode(newEntryRecord(e)) }, noop, nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return func(e *ldif.Entry) error { return enc.Encode(newEntryRecord(e)) }, enc.Close, nil
	case formatCBOR:
		enc := cborEncMode.NewEncoder(w)
		return func(e *ldif.Entry) error { return enc.Encode(newCBORRecord(e)) }, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown output format %q (want ldif, json, yaml or cbor)", format)
	}
}

func newEntriesCmd(a *app) *cobra.Command {
	var (
		format      string
		compression string
		stopOnError bool
	)

	cmd := &cobra.Command{
		Use:   "entries FILE|-",
		Short: "Stream the entries of an LDIF file",
		Long: `Reads the content records of an LDIF file, optionally compressed, and
writes each readable entry to stdout. Unreadable records are logged and
skipped unless --stop-on-error is given. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.LDIF
			if cmd.Flags().Changed("compression") {
				cfg.Compression = compression
			}
			if cmd.Flags().Changed("stop-on-error") {
				cfg.StopOnError = stopOnError
			}
			return a.streamEntries(args[0], format, cfg.Compression, cfg.StopOnError)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatLDIF, "Output format (ldif, json, yaml, cbor)")
	cmd.Flags().StringVar(&compression, "compression", "", "Input compression (none, gzip, zstd, lz4, auto)")
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Stop at the first unreadable entry")
	return cmd
}

func (a *app) streamEntries(path, format, compression string, stopOnError bool) error {
	comp, err := ldif.ParseCompression(compression)
	if err != nil {
		return err
	}

	encode, finish, err := newEntryEncoder(a.stdout, format, a.cfg.LDIF.WrapColumn)
	if err != nil {
		return err
	}

	reader, err := a.openLDIF(path, comp)
	if err != nil {
		return err
	}

	logger := a.logger.WithFields("file", path)
	source := ldif.NewEntrySource(reader, ldif.WithLogger(logger))
	defer source.Close()

	var read, skipped int
	for {
		entry, err := source.NextEntry()
		if err != nil {
			var serr *ldif.SourceError
			if errors.As(err, &serr) && serr.MayContinueReading() {
				skipped++
				logger.Warn("skipping entry", "error", serr.Err)
				if stopOnError {
					return fmt.Errorf("%w: %v", errSkippedEntries, serr.Err)
				}
				continue
			}
			return err
		}
		if entry == nil {
			break
		}
		if err := encode(entry); err != nil {
			return fmt.Errorf("write entry %s: %w", entry.DN, err)
		}
		read++
	}

	if err := finish(); err != nil {
		return err
	}
	logger.Info("finished reading entries", "entries", read, "skipped", skipped)
	return nil
}

func (a *app) openLDIF(path string, comp ldif.Compression) (*ldif.Reader, error) {
	opts := []ldif.ReaderOption{ldif.WithMaxLineLength(a.cfg.LDIF.MaxLineLength)}
	if path != "-" {
		return ldif.Open(path, comp, opts...)
	}
	rc, err := ldif.NewDecompressor(a.stdin, comp)
	if err != nil {
		return nil, err
	}
	return ldif.NewReader(rc, opts...), nil
}
