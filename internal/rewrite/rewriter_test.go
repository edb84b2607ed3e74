package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/graphgram/internal/grammar"
	"github.com/gyaneshwarpardhi/graphgram/internal/graph"
	"github.com/gyaneshwarpardhi/graphgram/internal/match"
)

func compileRule(t *testing.T, src string) *grammar.Rule {
	t.Helper()
	g, err := grammar.Compile([]string{src})
	require.NoError(t, err)
	return g.Rule(0)
}

func firstEmbedding(t *testing.T, host *graph.Graph, r *grammar.Rule) match.Embedding {
	t.Helper()
	embs := match.Collect(host, r.LHS(), 1)
	require.NotEmpty(t, embs, "rule %q does not apply", r.Source())
	return embs[0]
}

func typesOf(g *graph.Graph) map[string]int {
	return g.TypeCounts()
}

func TestApply_ReplaceSentinel(t *testing.T) {
	host := graph.NewGraph()
	host.AddNode("S", nil)
	r := compileRule(t, "S ==> A->B;")

	res := Apply(host, r, firstEmbedding(t, host, r), 0)

	assert.Equal(t, map[string]int{"A": 1, "B": 1}, typesOf(host))
	assert.Equal(t, 1, host.EdgeCount())
	assert.Len(t, res.Removed, 1)
	assert.Len(t, res.Created, 2)
	require.NoError(t, host.Check())
}

func TestApply_BoundaryEdgesDropped(t *testing.T) {
	host := graph.NewGraph()
	outside := host.AddNode("Z", nil)
	a := host.AddNode("A", nil)
	_, _ = host.AddEdge(outside, a)

	r := compileRule(t, "A ==> B;")
	res := Apply(host, r, firstEmbedding(t, host, r), 0)

	assert.Equal(t, 1, res.EdgesDropped)
	assert.Equal(t, 0, host.Degree(outside), "boundary edge must be dropped, not rerouted")
	assert.False(t, host.HasNode(a))
	require.NoError(t, host.Check())
}

func TestApply_SurvivorKeepsIdentityPayloadAndEdges(t *testing.T) {
	host := graph.NewGraph()
	outside := host.AddNode("Z", nil)
	a := host.AddNode("A", "treasure")
	_, _ = host.AddEdge(outside, a)

	r := compileRule(t, "A ==> A->B;")
	res := Apply(host, r, firstEmbedding(t, host, r), 0)

	n, ok := host.Node(a)
	require.True(t, ok, "surviving node must keep its id")
	assert.Equal(t, "treasure", n.Payload)
	assert.True(t, host.HasEdge(outside, a), "boundary edge of a survivor must be kept")
	b := res.Created[grammar.Name{Type: "B"}]
	assert.True(t, host.HasEdge(a, b))
	assert.Empty(t, res.Removed)
}

func TestApply_IdempotentEdge(t *testing.T) {
	host := graph.NewGraph()
	a := host.AddNode("A", nil)
	b := host.AddNode("B", nil)
	_, _ = host.AddEdge(a, b)

	r := compileRule(t, "A1->B1 ==> A1->B1, A1->C;")
	before := host.EdgeCount()
	res := Apply(host, r, firstEmbedding(t, host, r), 0)

	assert.Equal(t, before+1, host.EdgeCount(), "only A1-C is new")
	assert.Equal(t, 1, res.EdgesAdded)
	assert.True(t, host.HasEdge(a, b))
	require.NoError(t, host.Check())
}

func TestApply_NewEdgeBetweenSurvivors(t *testing.T) {
	host := graph.NewGraph()
	host.AddNode("A", nil)
	host.AddNode("B", nil)

	r := compileRule(t, "A1, B1 ==> A1->B1;")
	Apply(host, r, firstEmbedding(t, host, r), 0)
	assert.Equal(t, 1, host.EdgeCount())
	assert.Equal(t, 2, host.NodeCount())
}

func TestApply_SelectsProduct(t *testing.T) {
	r := compileRule(t, "A ==> B | C;")
	for i, want := range []string{"B", "C"} {
		host := graph.NewGraph()
		host.AddNode("A", nil)
		Apply(host, r, firstEmbedding(t, host, r), i)
		assert.Equal(t, map[string]int{want: 1}, typesOf(host))
	}
}

func TestApply_ContractViolations(t *testing.T) {
	host := graph.NewGraph()
	host.AddNode("A", nil)
	r := compileRule(t, "A ==> B;")
	other := compileRule(t, "A ==> C;")
	emb := firstEmbedding(t, host, other)

	assertViolation := func(name string, fn func()) {
		t.Helper()
		defer func() {
			v := recover()
			_, ok := v.(*ContractViolation)
			assert.True(t, ok, "%s: expected *ContractViolation panic, got %v", name, v)
		}()
		fn()
	}

	assertViolation("foreign embedding", func() { Apply(host, r, emb, 0) })
	assertViolation("zero embedding", func() { Apply(host, r, match.Embedding{}, 0) })
	assertViolation("product out of range", func() { Apply(host, r, firstEmbedding(t, host, r), 1) })
	assert.Equal(t, 1, host.NodeCount(), "failed applications must not mutate the host")
}
