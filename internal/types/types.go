// Package types defines the data model shared across the analysis pipeline:
// spans, IR nodes/edges, semantic entities, symbols, relations, chunks and
// the cross-file global context. Every downstream package (parser, ir,
// semanticir, symbollinker, graph, symbolgraph, chunking, indexing) imports
// this package instead of redeclaring its own copies of these shapes.
package types

// FileID is a dense per-build identifier for a source file, assigned in
// discovery order. It is NOT stable across builds; stable cross-run identity
// comes from FQNs and content hashes, never from FileID.
type FileID uint32

// Language identifies the grammar used to parse a file.
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguagePHP        Language = "php"
	LanguageCSharp     Language = "csharp"
	LanguageCPP        Language = "cpp"
	LanguageJava       Language = "java"
	LanguageZig        Language = "zig"
	LanguageUnknown    Language = "unknown"
)

const (
	// DefaultMaxFileSize bounds how large a single source file may be before
	// the scanner skips it outright rather than handing it to the parser.
	DefaultMaxFileSize = 10 * 1024 * 1024

	// DefaultMaxTotalSizeMB bounds the sum of all files the scanner will
	// enumerate for one build before it stops growing the candidate set.
	DefaultMaxTotalSizeMB = 2048

	// DefaultMaxFileCount caps the number of files one build will enumerate.
	DefaultMaxFileCount = 200000

	// DefaultParallelismFraction is the fraction of GOMAXPROCS the orchestrator
	// uses by default (§6 configuration: parallelism = 0.75 x cores).
	DefaultParallelismFraction = 0.75

	// BinaryPreCheckSizeThreshold: files above this size get a
	// content sniff before being handed to the parser.
	BinaryPreCheckSizeThreshold = 100 * 1024

	// BinaryPreCheckBytes is how many leading bytes the binary sniff reads.
	BinaryPreCheckBytes = 8192
)
