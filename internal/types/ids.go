package types

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// NodeID is a deterministic, content-derived identifier for an IR Node,
// Expression, Type/Signature entity, Symbol or Chunk. Two runs over
// byte-identical source produce identical NodeIDs (I3).
type NodeID uint64

func (id NodeID) String() string {
	return strconv.FormatUint(uint64(id), 36)
}

// IsZero reports whether id is the zero value (no entity produced it).
func (id NodeID) IsZero() bool { return id == 0 }

// idHasher accumulates the deterministic inputs to a NodeID. It never
// observes wall-clock time, scheduling order, or pointer identity -- only
// the discriminators spec.md §3/§9 calls out: kind, fqn, and normalized span.
type idHasher struct {
	h *xxhash.Digest
}

func newIDHasher() idHasher {
	return idHasher{h: xxhash.New()}
}

func (b idHasher) writeString(s string) idHasher {
	_, _ = b.h.Write([]byte{0}) // field separator, prevents "ab"+"c" == "a"+"bc" collisions
	_, _ = b.h.WriteString(s)
	return b
}

func (b idHasher) writeUint64(v uint64) idHasher {
	var buf [9]byte
	buf[0] = 1
	buf[1] = byte(v)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v >> 16)
	buf[4] = byte(v >> 24)
	buf[5] = byte(v >> 32)
	buf[6] = byte(v >> 40)
	buf[7] = byte(v >> 48)
	buf[8] = byte(v >> 56)
	_, _ = b.h.Write(buf[:])
	return b
}

func (b idHasher) sum() NodeID {
	return NodeID(b.h.Sum64())
}

// DeriveNodeID hashes (kind, fqn, normalized span) into a stable NodeID per
// I3. kind is a small discriminator (e.g. "Function", "Expr:Call",
// "Chunk:Block") so that synthetic nodes sharing a Span never collide (§9).
func DeriveNodeID(kind, fqn string, span Span) NodeID {
	return newIDHasher().
		writeString(kind).
		writeString(fqn).
		writeString(span.FilePath).
		writeUint64(uint64(span.StartByte)).
		writeUint64(uint64(span.EndByte)).
		sum()
}

// DeriveChunkID hashes (repoID, filePath, kind, stableKey) into a stable
// chunk_id per §3/§4.8. stableKey is the FQN for symbolic chunks and a
// normalized "start-end" line range for block chunks.
func DeriveChunkID(repoID, filePath, kind, stableKey string) NodeID {
	return newIDHasher().
		writeString("chunk").
		writeString(repoID).
		writeString(filePath).
		writeString(kind).
		writeString(stableKey).
		sum()
}

// ContentHash hashes exact byte content (already normalized for line
// endings by the caller) for chunk content-addressing (I6).
func ContentHash(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// FormatID renders a NodeID with a human-debuggable kind prefix, mirroring
// the "kind:hash" convention used across the pipeline's diagnostics.
func FormatID(kind string, id NodeID) string {
	return fmt.Sprintf("%s:%s", kind, id.String())
}
