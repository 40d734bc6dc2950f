package snapshot

import (
	"context"
	"fmt"

	"github.com/catagraph/catagraph/internal/catalog"
)

// Save writes the catalog as one snapshot, replacing any previous snapshot
// with the same catalog ID. The whole write is a single transaction.
func (s *Store) Save(ctx context.Context, cat *catalog.Catalog) error {
	fingerprint, err := cat.Fingerprint()
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalogs WHERE id = ?`, cat.ID); err != nil {
		return fmt.Errorf("save: clear previous snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalogs (id, fingerprint) VALUES (?, ?)`,
		cat.ID, fingerprint); err != nil {
		return fmt.Errorf("save: insert catalog: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (catalog_id, seq, name, kind, data_type, size, distinct_vals, identifier, subkind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save: prepare nodes: %w", err)
	}
	defer nodeStmt.Close()
	for i, n := range cat.Nodes() {
		if _, err := nodeStmt.ExecContext(ctx, cat.ID, i, n.Name, int(n.Kind), n.DataType,
			n.Size, n.DistinctVals, n.Identifier, int(n.Subkind)); err != nil {
			return fmt.Errorf("save: node %q: %w", n.Name, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (catalog_id, seq, name, kind, count, disjoint, complete)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save: prepare edges: %w", err)
	}
	defer edgeStmt.Close()
	for i, e := range cat.Edges() {
		if _, err := edgeStmt.ExecContext(ctx, cat.ID, i, e.Name, int(e.Kind),
			e.Count, e.Disjoint, e.Complete); err != nil {
			return fmt.Errorf("save: edge %q: %w", e.Name, err)
		}
	}

	incStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO incidences (catalog_id, seq, edge, node, kind, dir, identifier, distinct_vals,
		                        end_name, end_class, mult_min, mult_max, role, constraint_expr, anchor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save: prepare incidences: %w", err)
	}
	defer incStmt.Close()
	for i, inc := range cat.Incidences() {
		if _, err := incStmt.ExecContext(ctx, cat.ID, i, inc.Edge, inc.Node, int(inc.Kind),
			int(inc.Dir), inc.Identifier, inc.DistinctVals, inc.EndName, inc.EndClass,
			inc.Mult.Min, inc.Mult.Max, int(inc.Role), inc.Constraint, inc.Anchor); err != nil {
			return fmt.Errorf("save: incidence %q->%q: %w", inc.Edge, inc.Node, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: commit: %w", err)
	}
	return nil
}
