package check

import "github.com/jward/checkwalk/tree"

// DispatchTable lists, for every kind, the checks to call in registration
// order. The same lists drive Visit and Leave.
type DispatchTable struct {
	byKind [tree.KindCount][]int
	empty  bool
}

func newDispatchTable(modules []Module) *DispatchTable {
	d := &DispatchTable{empty: true}
	for i, m := range modules {
		for _, k := range m.Tokens {
			d.byKind[k] = append(d.byKind[k], i)
			d.empty = false
		}
	}
	return d
}

// Handlers returns the indices of checks listening to k.
func (d *DispatchTable) Handlers(k tree.Kind) []int {
	if int(k) >= len(d.byKind) {
		return nil
	}
	return d.byKind[k]
}

// Empty reports whether no check listens to any kind.
func (d *DispatchTable) Empty() bool { return d.empty }
