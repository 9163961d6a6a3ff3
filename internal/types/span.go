package types

import "fmt"

// Position is a 1-based line, 0-based column pair, matching the convention
// the Tree-sitter grammars already use internally.
type Position struct {
	Line   int
	Column int
}

// Span locates a range of source text. All downstream entities carry a
// Span; Spans must survive edits via the incremental reparser's byte-offset
// edit application (C1 §4.1).
type Span struct {
	FilePath    string
	Start       Position
	End         Position
	StartByte   uint32
	EndByte     uint32
}

// Len returns the byte length covered by the span.
func (s Span) Len() uint32 {
	if s.EndByte < s.StartByte {
		return 0
	}
	return s.EndByte - s.StartByte
}

// IsZero reports whether the span carries no location information.
func (s Span) IsZero() bool {
	return s.FilePath == "" && s.StartByte == 0 && s.EndByte == 0
}

// Slice extracts the exact byte range this span covers from file content.
// Callers must normalize line endings before hashing the result (§9).
func (s Span) Slice(content []byte) []byte {
	if int(s.EndByte) > len(content) || s.StartByte > s.EndByte {
		return nil
	}
	return content[s.StartByte:s.EndByte]
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d-%d:%d", s.FilePath, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Contains reports whether byte offset b falls within this span.
func (s Span) Contains(b uint32) bool {
	return b >= s.StartByte && b < s.EndByte
}

// Overlaps reports whether two spans in the same file share any bytes.
func (s Span) Overlaps(o Span) bool {
	if s.FilePath != o.FilePath {
		return false
	}
	return s.StartByte < o.EndByte && o.StartByte < s.EndByte
}
