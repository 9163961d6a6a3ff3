package symbolgraph

import (
	"testing"

	"github.com/standardbeagle/lci/internal/types"
)

func TestParseNodeID_RoundTripsWithString(t *testing.T) {
	id := types.NodeID(123456789)
	parsed := parseNodeID(id.String())
	if parsed != id {
		t.Fatalf("expected parseNodeID(id.String()) == id, got %d != %d", parsed, id)
	}
}

func TestParseNodeID_MalformedInputYieldsZero(t *testing.T) {
	if got := parseNodeID("not-a-valid-id"); got != 0 {
		t.Fatalf("expected zero NodeID for malformed input, got %d", got)
	}
}
