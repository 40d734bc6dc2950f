package check

import "github.com/catagraph/catagraph/internal/catalog"

// Set rules (IC-Sets1 - IC-Sets2).
const (
	ICSets1 = "IC-Sets1" // set has a phantom
	ICSets2 = "IC-Sets2" // sets never directly contain classes or other sets
)

func (ck *checker) checkSets() {
	cat := ck.cat
	for _, set := range cat.EdgesOfKind(catalog.EdgeSet) {
		if cat.PhantomOfEdge(set.Name) == nil {
			ck.add(ICSets1, []string{set.Name}, "set has no phantom node")
		}
		for _, inc := range cat.OutboundOf(set.Name) {
			e := cat.EdgeOfPhantom(inc.Node)
			if e == nil {
				ck.add(ICSets2, []string{set.Name, inc.Node}, "set directly contains a non-edge element")
				continue
			}
			if e.Kind == catalog.EdgeClass || e.Kind == catalog.EdgeSet {
				ck.add(ICSets2, []string{set.Name, e.Name}, "set directly contains a %s", e.Kind)
			}
		}
	}
}
