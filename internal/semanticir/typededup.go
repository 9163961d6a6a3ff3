package semanticir

import (
	"strings"
	"sync"

	"github.com/standardbeagle/lci/internal/types"
)

// TypeDeduper is the project-wide type dedup table §4.4 phase 1 requires
// ("Deduplicate types by their canonical text across the project"). It is
// shared by every file's phase-1 run, so it needs its own lock -- phase 1
// itself is one of the per-file-parallel C4 workers (§4.4, §5).
type TypeDeduper struct {
	mu    sync.Mutex
	byKey map[string]*types.TypeEntity
}

func NewTypeDeduper() *TypeDeduper {
	return &TypeDeduper{byKey: make(map[string]*types.TypeEntity)}
}

// Normalize applies the non-exhaustive normalization rules of §4.4:
// trailing "| None"/"Optional[T]" sets IsNullable and unwraps to T; angle
// or bracket generics set flavor=Generic; "A | B" pipes set flavor=Union;
// "(...) -> T" arrows set flavor=Callable. Falls back to flavor=User.
func Normalize(rawText string) (canonical string, flavor types.TypeFlavor, nullable bool) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return "", types.TypeFlavorUser, false
	}

	if strings.HasSuffix(text, "| None") {
		text = strings.TrimSpace(strings.TrimSuffix(text, "| None"))
		nullable = true
	}
	if strings.HasPrefix(text, "Optional[") && strings.HasSuffix(text, "]") {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "Optional["), "]")
		nullable = true
	}

	if strings.Contains(text, "->") {
		return text, types.TypeFlavorCallable, nullable
	}
	if strings.Contains(text, "|") {
		return text, types.TypeFlavorUnion, nullable
	}
	if strings.ContainsAny(text, "[<") {
		return text, types.TypeFlavorGeneric, nullable
	}
	if _, ok := primitiveTypeNames[text]; ok {
		return text, types.TypeFlavorPrimitive, nullable
	}
	if _, ok := builtinTypeNames[text]; ok {
		return text, types.TypeFlavorBuiltin, nullable
	}
	return text, types.TypeFlavorUser, nullable
}

var primitiveTypeNames = map[string]bool{
	"int": true, "float": true, "bool": true, "str": true, "bytes": true,
	"int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true, "string": true, "byte": true, "rune": true,
	"None": true, "NoneType": true,
}

var builtinTypeNames = map[string]bool{
	"list": true, "dict": true, "set": true, "tuple": true, "frozenset": true,
	"List": true, "Dict": true, "Set": true, "Tuple": true,
	"[]byte": true, "map": true, "slice": true, "any": true, "object": true,
}

// GetOrCreate returns the deduplicated TypeEntity for rawText, creating one
// keyed on its normalized canonical form if this is the first occurrence in
// the project.
func (d *TypeDeduper) GetOrCreate(rawText string) *types.TypeEntity {
	canonical, flavor, nullable := Normalize(rawText)
	if canonical == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.byKey[canonical]; ok {
		return existing
	}
	id := types.DeriveNodeID("Type", canonical, types.Span{})
	entity := &types.TypeEntity{
		ID:               id,
		RawText:          canonical,
		Flavor:           flavor,
		IsNullable:       nullable,
		ExternalTypeText: rawText,
	}
	d.byKey[canonical] = entity
	return entity
}

// Snapshot returns a defensive copy of all types created so far, keyed by ID.
func (d *TypeDeduper) Snapshot() map[types.NodeID]*types.TypeEntity {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[types.NodeID]*types.TypeEntity, len(d.byKey))
	for _, v := range d.byKey {
		out[v.ID] = v
	}
	return out
}
