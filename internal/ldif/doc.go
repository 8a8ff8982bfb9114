// Package ldif reads and writes directory entries in LDIF (RFC 2849).
//
// A Reader parses content records from a stream. An EntrySource wraps any
// RecordReader and exposes a pull iterator with classified errors and a
// close that releases the reader exactly once:
//
//	r, err := ldif.Open("people.ldif.zst", ldif.CompressionAuto)
//	if err != nil {
//	    return err
//	}
//	src := ldif.NewEntrySource(r, ldif.WithLogger(logger))
//	defer src.Close()
//
//	for {
//	    entry, err := src.NextEntry()
//	    var serr *ldif.SourceError
//	    if errors.As(err, &serr) && serr.Kind == ldif.Recoverable {
//	        continue
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    if entry == nil {
//	        break
//	    }
//	    process(entry)
//	}
package ldif
