package grammar

import "fmt"

// Name identifies a node inside a rule.
//
// A labeled name (A1) is shared by every occurrence in a product and can
// survive a rewrite. An unlabeled name (A) is canonical only when its type
// occurs unlabeled once in the product; otherwise each occurrence is an
// anonymous node (Anon > 0) that never survives.
type Name struct {
	Type     string
	Label    int
	HasLabel bool
	Anon     int
}

// Anonymous reports whether n names a single unshared occurrence.
func (n Name) Anonymous() bool {
	return n.Anon > 0
}

func (n Name) String() string {
	switch {
	case n.HasLabel:
		return fmt.Sprintf("%s%d", n.Type, n.Label)
	case n.Anon > 0:
		return fmt.Sprintf("%s~%d", n.Type, n.Anon)
	default:
		return n.Type
	}
}
