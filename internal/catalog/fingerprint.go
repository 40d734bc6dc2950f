package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Domain prefix for content-addressed catalog identity.
// Version suffix enables future algorithm migration.
const domainCatalog = "catagraph/catalog/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content hash of the catalog: a stable digest of
// its node/edge/incidence sets, independent of insertion order. Two
// catalogs with identical content fingerprint identically, which is what
// the snapshot round-trip check relies on.
func (c *Catalog) Fingerprint() (string, error) {
	nodes := make([]any, 0, len(c.nodeOrder))
	names := append([]string(nil), c.nodeOrder...)
	sort.Strings(names)
	for _, name := range names {
		n := c.nodes[name]
		nodes = append(nodes, map[string]any{
			"name":          n.Name,
			"kind":          int64(n.Kind),
			"data_type":     n.DataType,
			"size":          int64(n.Size),
			"distinct_vals": n.DistinctVals,
			"identifier":    n.Identifier,
			"subkind":       int64(n.Subkind),
		})
	}

	edges := make([]any, 0, len(c.edgeOrder))
	names = append(names[:0], c.edgeOrder...)
	sort.Strings(names)
	for _, name := range names {
		e := c.edges[name]
		edges = append(edges, map[string]any{
			"name":     e.Name,
			"kind":     int64(e.Kind),
			"count":    e.Count,
			"disjoint": e.Disjoint,
			"complete": e.Complete,
		})
	}

	incs := make([]*Incidence, len(c.incidences))
	copy(incs, c.incidences)
	sort.Slice(incs, func(i, j int) bool {
		a, b := incs[i], incs[j]
		if a.Edge != b.Edge {
			return a.Edge < b.Edge
		}
		if a.Node != b.Node {
			return a.Node < b.Node
		}
		if a.Dir != b.Dir {
			return a.Dir < b.Dir
		}
		return a.EndName < b.EndName
	})
	incList := make([]any, 0, len(incs))
	for _, inc := range incs {
		incList = append(incList, map[string]any{
			"edge":          inc.Edge,
			"node":          inc.Node,
			"kind":          int64(inc.Kind),
			"dir":           int64(inc.Dir),
			"identifier":    inc.Identifier,
			"distinct_vals": inc.DistinctVals,
			"end_name":      inc.EndName,
			"end_class":     inc.EndClass,
			"mult_min":      int64(inc.Mult.Min),
			"mult_max":      int64(inc.Mult.Max),
			"role":          int64(inc.Role),
			"constraint":    inc.Constraint,
			"anchor":        inc.Anchor,
		})
	}

	canonical, err := MarshalCanonical(map[string]any{
		"nodes":      nodes,
		"edges":      edges,
		"incidences": incList,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(domainCatalog, canonical), nil
}
