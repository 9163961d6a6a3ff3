package indexing

import (
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/lci/internal/config"
)

// Pipeline configuration constants.
const (
	// taskChannelTimeout bounds how long the scanner waits on a full task
	// channel before falling back to exponential-backoff retries.
	taskChannelTimeout = 5 * time.Second
)

// FileTask represents a file queued for C1/C2 processing.
type FileTask struct {
	Path     string
	Info     os.FileInfo
	Language string // extension-derived language tag; resolved to types.Language by the parser stage
	Priority int    // higher priority files processed first
}

// FileScanner handles directory traversal and file discovery: gitignore
// filtering, include/exclude glob matching and binary pre-checks, ahead of
// handing each surviving path to the parser stage as a FileTask.
type FileScanner struct {
	config          *config.Config
	bufferSize      int
	gitignoreParser *config.GitignoreParser
	binaryDetector  *BinaryDetector

	// Pre-compiled glob patterns for fast matching (doublestar compiles internally)
	compiledExclusions []string
	compiledInclusions []string
}

// compilePatterns pre-compiles exclusion and inclusion patterns for fast matching
func (fs *FileScanner) compilePatterns() {
	fs.compiledExclusions = make([]string, 0, len(fs.config.Exclude))
	fs.compiledExclusions = append(fs.compiledExclusions, fs.config.Exclude...)

	fs.compiledInclusions = make([]string, 0, len(fs.config.Include))
	fs.compiledInclusions = append(fs.compiledInclusions, fs.config.Include...)
}

// shouldExcludeFast checks if a path matches any exclusion pattern using fast doublestar matching
func (fs *FileScanner) shouldExcludeFast(path string) bool {
	for _, pattern := range fs.compiledExclusions {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// shouldIncludeFast checks if a path matches any inclusion pattern using fast doublestar matching
func (fs *FileScanner) shouldIncludeFast(path string) bool {
	if len(fs.compiledInclusions) == 0 {
		return true
	}
	for _, pattern := range fs.compiledInclusions {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
