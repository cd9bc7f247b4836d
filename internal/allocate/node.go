// Package allocate implements the transaction-allocation engine: given
// a priority tree of accounts and an amount of money available to move
// in a simulated year, it determines how much flows to or from each
// leaf account while respecting node-level and account-level limits.
//
// A priority tree is described by nesting three kinds of values:
//
//   - an ordered sequence ([]any): children are filled in order, each
//     child may consume all remaining money before the next is visited;
//   - a weighted mapping (Weighted): money is apportioned among
//     children in proportion to their weights, with excess from capped
//     children redistributed to the rest;
//   - a leaf (Account): a concrete account that records transactions.
//
// Any element may also be a previously built *Node, which is reused
// unchanged. The engine never mutates accounts; callers apply the
// returned transaction mapping themselves.
package allocate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"
)

// Account is the leaf capability the engine consumes. Limit methods
// return magnitudes: an account's max outflow of 100 means up to 100
// may be withdrawn. Limits may be dynamic, e.g. a debt's max inflow is
// whatever reduces its balance to zero at call time.
type Account interface {
	Balance() decimal.Decimal
	MinInflow(at core.Timing) core.Limit
	MaxInflow(at core.Timing) core.Limit
	MinOutflow(at core.Timing) core.Limit
	MaxOutflow(at core.Timing) core.Limit
	DefaultTiming() core.Timing
}

// Entry pairs a child source with its weight in a weighted node.
type Entry struct {
	Source any
	Weight decimal.Decimal
}

// Weighted describes a weighted parent node. A slice of entries rather
// than a map keeps iteration deterministic; weights need not sum to 1.
type Weighted []Entry

type nodeKind int

const (
	leafKind nodeKind = iota
	orderedKind
	weightedKind
)

// Node is one element of a normalized priority tree: a leaf wrapping
// an account, an ordered parent, or a weighted parent. Node-level
// limits constrain the aggregate flow through the whole subtree; they
// never loosen a leaf's own limits — the stricter bound always wins.
// Nodes are immutable once built.
type Node struct {
	source   any
	limits   core.LimitTuple
	kind     nodeKind
	account  Account
	children []*Node
	weights  []decimal.Decimal // parallel to children; weighted nodes only
}

// NewNode normalizes a tree description into a Node. A *Node source is
// returned as-is (the limits argument is ignored in favor of the
// existing node's limits). The zero LimitTuple means unbounded in
// every direction.
func NewNode(source any, limits core.LimitTuple) (*Node, error) {
	switch src := source.(type) {
	case *Node:
		return src, nil
	case []any:
		node := &Node{source: source, limits: limits, kind: orderedKind}
		for _, child := range src {
			childNode, err := NewNode(child, core.LimitTuple{})
			if err != nil {
				return nil, err
			}
			node.children = append(node.children, childNode)
		}
		return node, nil
	case Weighted:
		node := &Node{source: source, limits: limits, kind: weightedKind}
		for _, entry := range src {
			childNode, err := NewNode(entry.Source, core.LimitTuple{})
			if err != nil {
				return nil, err
			}
			node.children = append(node.children, childNode)
			node.weights = append(node.weights, entry.Weight)
		}
		return node, nil
	case Account:
		return &Node{source: source, limits: limits, kind: leafKind, account: src}, nil
	default:
		return nil, fmt.Errorf("%w: %T", core.ErrUnsupportedSource, source)
	}
}

// Leaf wraps a single account in a limited node. Convenience for
// attaching limits to one leaf of a larger description.
func Leaf(account Account, limits core.LimitTuple) *Node {
	return &Node{source: account, limits: limits, kind: leafKind, account: account}
}

// Source returns the description this node was built from.
func (n *Node) Source() any { return n.source }

// Limits returns the node's aggregate flow limits.
func (n *Node) Limits() core.LimitTuple { return n.limits }

// Account returns the wrapped account, or nil for parent nodes.
func (n *Node) Account() Account { return n.account }

// Children returns the node's direct children in declaration order.
// The returned slice must not be mutated.
func (n *Node) Children() []*Node { return n.children }

// Weight returns the weight of the i-th child of a weighted node.
func (n *Node) Weight(i int) decimal.Decimal {
	if n.kind != weightedKind {
		return decimal.Zero
	}
	return n.weights[i]
}

func (n *Node) IsLeaf() bool     { return n.kind == leafKind }
func (n *Node) IsOrdered() bool  { return n.kind == orderedKind }
func (n *Node) IsWeighted() bool { return n.kind == weightedKind }

// ChildrenSubset restricts the node's children to the given subset,
// preserving the parent's container shape: a weighted node yields a
// Weighted mapping carrying the original weights, an ordered node
// yields a []*Node in the original order. Requesting a node that is
// not a direct child fails with core.ErrUnknownChild.
func (n *Node) ChildrenSubset(subset []*Node) (any, error) {
	switch n.kind {
	case weightedKind:
		result := make(Weighted, 0, len(subset))
		for _, want := range subset {
			i, ok := n.childIndex(want)
			if !ok {
				return nil, fmt.Errorf("%w: weighted subset", core.ErrUnknownChild)
			}
			result = append(result, Entry{Source: want, Weight: n.weights[i]})
		}
		return result, nil
	case orderedKind:
		for _, want := range subset {
			if _, ok := n.childIndex(want); !ok {
				return nil, fmt.Errorf("%w: ordered subset", core.ErrUnknownChild)
			}
		}
		result := make([]*Node, 0, len(subset))
		for _, child := range n.children {
			if containsNode(subset, child) {
				result = append(result, child)
			}
		}
		return result, nil
	case leafKind:
		if len(subset) > 0 {
			return nil, fmt.Errorf("%w: leaf has no children", core.ErrUnknownChild)
		}
		return []*Node{}, nil
	default:
		// Unreachable for nodes built by NewNode; guards against
		// extension types with an unrecognized kind.
		return nil, fmt.Errorf("%w: node kind %d", core.ErrUnsupportedSource, n.kind)
	}
}

func (n *Node) childIndex(want *Node) (int, bool) {
	for i, child := range n.children {
		if child == want {
			return i, true
		}
	}
	return 0, false
}

func containsNode(nodes []*Node, want *Node) bool {
	for _, n := range nodes {
		if n == want {
			return true
		}
	}
	return false
}

// leaves appends all accounts reachable from n in traversal order.
func (n *Node) leaves(out []Account) []Account {
	if n.kind == leafKind {
		return append(out, n.account)
	}
	for _, child := range n.children {
		out = child.leaves(out)
	}
	return out
}
