// Package rewrite applies one production to a host graph.
package rewrite

import (
	"fmt"

	"github.com/gyaneshwarpardhi/graphgram/internal/grammar"
	"github.com/gyaneshwarpardhi/graphgram/internal/graph"
	"github.com/gyaneshwarpardhi/graphgram/internal/match"
)

// ContractViolation is the panic value raised when Apply receives an
// embedding or product that did not come from the rule being applied.
type ContractViolation struct {
	Rule string
	Msg  string
}

func (c *ContractViolation) Error() string {
	return fmt.Sprintf("rewrite contract violation (rule %q): %s", c.Rule, c.Msg)
}

// Result summarises one rewrite.
type Result struct {
	Removed      []graph.NodeID
	Created      map[grammar.Name]graph.NodeID
	EdgesDropped int // incident to removed nodes, boundary edges included
	EdgesAdded   int // product edges that did not already exist
}

// Apply rewrites host in place with product i of rule at embedding emb:
//
//  1. LHS names absent from the product are deleted with all their edges,
//     including boundary edges to the rest of the host.
//  2. Surviving names keep their host node, payload and every edge.
//  3. Product-only names become fresh nodes of their declared type.
//  4. Product edges are added between the resulting nodes; edges that
//     already exist are left alone.
//
// Apply panics with *ContractViolation if emb does not embed rule's LHS or i
// is not one of its products.
func Apply(host *graph.Graph, rule *grammar.Rule, emb match.Embedding, i int) Result {
	if emb.Pattern() != rule.LHS() {
		panic(&ContractViolation{Rule: rule.Source(), Msg: "embedding does not belong to this rule's pattern"})
	}
	if i < 0 || i >= rule.NumProducts() {
		panic(&ContractViolation{Rule: rule.Source(), Msg: fmt.Sprintf("product %d out of range [0,%d)", i, rule.NumProducts())})
	}
	product := rule.Product(i)
	corr := rule.Correspondence(i)

	res := Result{Created: make(map[grammar.Name]graph.NodeID, len(corr.Created))}
	resolved := make(map[grammar.Name]graph.NodeID, product.Len())

	for _, n := range corr.Surviving {
		id, _ := emb.Image(n)
		if !host.HasNode(id) {
			panic(&ContractViolation{Rule: rule.Source(), Msg: fmt.Sprintf("surviving node %s (%d) is not in the host", n, id)})
		}
		resolved[n] = id
	}

	for _, n := range corr.Removed {
		id, _ := emb.Image(n)
		dropped, err := host.RemoveNode(id)
		if err != nil {
			panic(&ContractViolation{Rule: rule.Source(), Msg: fmt.Sprintf("removing %s: %v", n, err)})
		}
		res.Removed = append(res.Removed, id)
		res.EdgesDropped += dropped
	}

	for _, n := range corr.Created {
		id := host.AddNode(n.Type, nil)
		resolved[n] = id
		res.Created[n] = id
	}

	for _, e := range product.Edges() {
		a := resolved[product.Name(e.A)]
		b := resolved[product.Name(e.B)]
		added, err := host.AddEdge(a, b)
		if err != nil {
			panic(&ContractViolation{Rule: rule.Source(), Msg: fmt.Sprintf("product edge: %v", err)})
		}
		if added {
			res.EdgesAdded++
		}
	}
	return res
}
