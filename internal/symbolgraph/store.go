package symbolgraph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/standardbeagle/lci/internal/types"
)

// Store persists a SymbolGraph as two tables (symbols, relations) to a
// relational store and loads it back, reconstructing indices (§4.7, §6
// Persistence layout). It is a cross-process sharing mechanism only -- the
// in-memory SymbolGraph remains primary (§4.7). Built against
// database/sql directly rather than a driver-specific client: the
// retrieval pack ships no SQL driver in any example's go.mod, so this
// layer takes a caller-supplied *sql.DB (any driver) instead of importing
// one, which is the stdlib-idiomatic way to stay driver-agnostic; see
// DESIGN.md for why no pack dependency could serve this concern.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the symbols/relations tables and their indices if
// absent (§6 Persistence layout).
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS symbols (
			id TEXT PRIMARY KEY,
			repo_id TEXT NOT NULL,
			snapshot_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			fqn TEXT NOT NULL,
			name TEXT NOT NULL,
			parent_id TEXT,
			signature_id TEXT,
			type_id TEXT,
			span_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_repo_snapshot ON symbols(repo_id, snapshot_id)`,
		`CREATE TABLE IF NOT EXISTS relations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			repo_id TEXT NOT NULL,
			snapshot_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			span_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_repo_snapshot ON relations(repo_id, snapshot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("symbolgraph: schema: %w", err)
		}
	}
	return nil
}

// Save writes every symbol and relation in sg under (repoID, snapshotID).
func (s *Store) Save(ctx context.Context, repoID, snapshotID string, sg *SymbolGraph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	symStmt, err := tx.PrepareContext(ctx, `INSERT INTO symbols
		(id, repo_id, snapshot_id, kind, fqn, name, parent_id, signature_id, type_id, span_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer symStmt.Close()

	for _, sym := range sg.Symbols {
		spanJSON, err := json.Marshal(sym.Span)
		if err != nil {
			return err
		}
		if _, err := symStmt.ExecContext(ctx, sym.ID.String(), repoID, snapshotID, string(sym.Kind),
			sym.FQN, sym.Name, sym.ParentID.String(), sym.SignatureID.String(), sym.TypeID.String(), string(spanJSON)); err != nil {
			return err
		}
	}

	relStmt, err := tx.PrepareContext(ctx, `INSERT INTO relations
		(repo_id, snapshot_id, kind, source_id, target_id, span_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer relStmt.Close()

	for _, rel := range sg.Relations {
		spanJSON, err := json.Marshal(rel.Span)
		if err != nil {
			return err
		}
		if _, err := relStmt.ExecContext(ctx, repoID, snapshotID, string(rel.Kind),
			rel.SourceID.String(), rel.TargetID.String(), string(spanJSON)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load reconstructs a SymbolGraph for (repoID, snapshotID) from the store,
// rebuilding all four indices from the relations table (§8 round-trip
// property: "reconstructs symbols exactly, reconstructs all four indices
// from relations, and preserves all Relation endpoints").
func (s *Store) Load(ctx context.Context, repoID, snapshotID string) (*SymbolGraph, error) {
	sg := New()

	symRows, err := s.db.QueryContext(ctx, `SELECT id, kind, fqn, name, parent_id, signature_id, type_id, span_json
		FROM symbols WHERE repo_id = ? AND snapshot_id = ?`, repoID, snapshotID)
	if err != nil {
		return nil, err
	}
	defer symRows.Close()

	for symRows.Next() {
		var idStr, kind, fqn, name, parentStr, sigStr, typeStr, spanJSON string
		if err := symRows.Scan(&idStr, &kind, &fqn, &name, &parentStr, &sigStr, &typeStr, &spanJSON); err != nil {
			return nil, err
		}
		var span types.Span
		if err := json.Unmarshal([]byte(spanJSON), &span); err != nil {
			return nil, err
		}
		id := parseNodeID(idStr)
		sym := &types.Symbol{
			ID:          id,
			Kind:        types.NodeKind(kind),
			FQN:         fqn,
			Name:        name,
			RepoID:      repoID,
			SnapshotID:  snapshotID,
			Span:        span,
			ParentID:    parseNodeID(parentStr),
			SignatureID: parseNodeID(sigStr),
			TypeID:      parseNodeID(typeStr),
		}
		sg.Symbols[id] = sym
		sg.FileToSymbols[span.FilePath] = append(sg.FileToSymbols[span.FilePath], id)
	}
	if err := symRows.Err(); err != nil {
		return nil, err
	}

	relRows, err := s.db.QueryContext(ctx, `SELECT kind, source_id, target_id, span_json
		FROM relations WHERE repo_id = ? AND snapshot_id = ?`, repoID, snapshotID)
	if err != nil {
		return nil, err
	}
	defer relRows.Close()

	for relRows.Next() {
		var kind, sourceStr, targetStr, spanJSON string
		if err := relRows.Scan(&kind, &sourceStr, &targetStr, &spanJSON); err != nil {
			return nil, err
		}
		var span types.Span
		if err := json.Unmarshal([]byte(spanJSON), &span); err != nil {
			return nil, err
		}
		source, target := parseNodeID(sourceStr), parseNodeID(targetStr)
		rel := &types.Relation{Kind: types.RelationKind(kind), SourceID: source, TargetID: target, Span: span}
		sg.Relations = append(sg.Relations, rel)

		switch rel.Kind {
		case types.RelationContains:
			sg.ParentToChildren[source] = append(sg.ParentToChildren[source], target)
		case types.RelationCalls:
			sg.CallerToCallees[source] = append(sg.CallerToCallees[source], target)
			sg.CalleeToCallers[target] = append(sg.CalleeToCallers[target], source)
		}
	}
	if err := relRows.Err(); err != nil {
		return nil, err
	}

	return sg, nil
}

func parseNodeID(s string) types.NodeID {
	v, err := strconv.ParseUint(s, 36, 64)
	if err != nil {
		return 0
	}
	return types.NodeID(v)
}
