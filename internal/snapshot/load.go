package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/catagraph/catagraph/internal/catalog"
)

// Info describes one stored snapshot.
type Info struct {
	ID          string
	Fingerprint string
	SavedAt     string
}

// List returns the stored snapshots, most recent first.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fingerprint, saved_at FROM catalogs ORDER BY saved_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.Fingerprint, &info.SavedAt); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Load restores the catalog with the given ID and verifies its fingerprint
// against the one recorded at save time.
func (s *Store) Load(ctx context.Context, id string) (*catalog.Catalog, error) {
	var stored string
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM catalogs WHERE id = ?`, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", id, err)
	}

	nodes, err := s.loadNodes(ctx, id)
	if err != nil {
		return nil, err
	}
	edges, err := s.loadEdges(ctx, id)
	if err != nil {
		return nil, err
	}
	incidences, err := s.loadIncidences(ctx, id)
	if err != nil {
		return nil, err
	}

	cat := catalog.Restore(id, nodes, edges, incidences)
	fingerprint, err := cat.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", id, err)
	}
	if fingerprint != stored {
		return nil, fmt.Errorf("load %q: stored %s, computed %s: %w", id, stored, fingerprint, ErrFingerprintMismatch)
	}
	return cat, nil
}

func (s *Store) loadNodes(ctx context.Context, id string) ([]*catalog.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind, data_type, size, distinct_vals, identifier, subkind
		FROM nodes WHERE catalog_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Node
	for rows.Next() {
		var n catalog.Node
		var kind, subkind int
		if err := rows.Scan(&n.Name, &kind, &n.DataType, &n.Size, &n.DistinctVals, &n.Identifier, &subkind); err != nil {
			return nil, fmt.Errorf("load nodes: scan: %w", err)
		}
		n.Kind = catalog.NodeKind(kind)
		n.Subkind = catalog.EdgeKind(subkind)
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (s *Store) loadEdges(ctx context.Context, id string) ([]*catalog.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind, count, disjoint, complete
		FROM edges WHERE catalog_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Edge
	for rows.Next() {
		var e catalog.Edge
		var kind int
		if err := rows.Scan(&e.Name, &kind, &e.Count, &e.Disjoint, &e.Complete); err != nil {
			return nil, fmt.Errorf("load edges: scan: %w", err)
		}
		e.Kind = catalog.EdgeKind(kind)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *Store) loadIncidences(ctx context.Context, id string) ([]*catalog.Incidence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT edge, node, kind, dir, identifier, distinct_vals,
		       end_name, end_class, mult_min, mult_max, role, constraint_expr, anchor
		FROM incidences WHERE catalog_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load incidences: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Incidence
	for rows.Next() {
		var inc catalog.Incidence
		var kind, dir, role int
		if err := rows.Scan(&inc.Edge, &inc.Node, &kind, &dir, &inc.Identifier, &inc.DistinctVals,
			&inc.EndName, &inc.EndClass, &inc.Mult.Min, &inc.Mult.Max, &role, &inc.Constraint, &inc.Anchor); err != nil {
			return nil, fmt.Errorf("load incidences: scan: %w", err)
		}
		inc.Kind = catalog.EdgeKind(kind)
		inc.Dir = catalog.Direction(dir)
		inc.Role = catalog.GenRole(role)
		out = append(out, &inc)
	}
	return out, rows.Err()
}
