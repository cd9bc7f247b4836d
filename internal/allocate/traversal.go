package allocate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"
)

// Schedule maps transaction timings to signed available amounts.
// Positive entries are contributions, negative entries withdrawals;
// each entry is allocated independently at its own timing.
type Schedule map[core.Timing]decimal.Decimal

// Result maps each leaf account to its transactions grouped by timing.
// Positive amounts are inflows to the account, negative are outflows.
// Every account reachable from the traversed tree appears as a key,
// even when nothing was allocated to it.
type Result map[Account]map[core.Timing]decimal.Decimal

func (r Result) add(account Account, at core.Timing, amount decimal.Decimal) {
	m, ok := r[account]
	if !ok {
		m = make(map[core.Timing]decimal.Decimal)
		r[account] = m
	}
	m[at] = m[at].Add(amount)
}

// Total returns the signed sum of all transactions in the result.
func (r Result) Total() decimal.Decimal {
	total := decimal.Zero
	for _, byTiming := range r {
		for _, amount := range byTiming {
			total = total.Add(amount)
		}
	}
	return total
}

// Traverse allocates a single signed amount across the tree described
// by tree (a nested description or a prebuilt *Node). Each leaf
// records its share at its own default timing. With assignMinFirst,
// every node's effective minimum is assigned in traversal order before
// remaining money is allocated; when minimums are jointly infeasible
// they are satisfied greedily and low-priority nodes are shorted.
//
// Money that exceeds the root's effective capacity is left
// unallocated; that is not an error. A zero amount still produces a
// zero-valued entry for every reachable leaf.
func Traverse(tree any, available decimal.Decimal, assignMinFirst bool) (Result, error) {
	root, err := NewNode(tree, core.LimitTuple{})
	if err != nil {
		return nil, err
	}
	result := make(Result)
	run(root, available, 0, true, assignMinFirst, result)
	fillZeroLeaves(root, result)
	return result, nil
}

// TraverseSchedule allocates each entry of the schedule independently
// at its own timing, using inflow or outflow limits according to the
// entry's sign. Entries are processed in ascending timing order.
func TraverseSchedule(tree any, schedule Schedule, assignMinFirst bool) (Result, error) {
	root, err := NewNode(tree, core.LimitTuple{})
	if err != nil {
		return nil, err
	}
	timings := make([]core.Timing, 0, len(schedule))
	for at := range schedule {
		if err := at.Validate(); err != nil {
			return nil, fmt.Errorf("schedule timing %v: %w", at, err)
		}
		timings = append(timings, at)
	}
	sort.Slice(timings, func(i, j int) bool { return timings[i] < timings[j] })

	result := make(Result)
	for _, at := range timings {
		amount := schedule[at]
		if amount.IsZero() {
			continue
		}
		run(root, amount, at, false, assignMinFirst, result)
	}
	fillZeroLeaves(root, result)
	return result, nil
}

// capacity is a node's effective bounds in one direction: max is the
// tighter of the node's declared limit and the sum of its children's
// effective capacities; min is the largest floor declared on the node
// or required by its children, clipped to max.
type capacity struct {
	max core.Limit
	min decimal.Decimal
}

type capacityTable map[*Node]capacity

type traversal struct {
	caps           capacityTable
	at             core.Timing
	useDefault     bool
	outflow        bool
	assignMinFirst bool
}

func run(root *Node, available decimal.Decimal, at core.Timing, useDefault, assignMinFirst bool, result Result) {
	outflow := available.IsNegative()
	magnitude := available.Abs()

	t := &traversal{
		caps:           make(capacityTable),
		at:             at,
		useDefault:     useDefault,
		outflow:        outflow,
		assignMinFirst: assignMinFirst,
	}
	rootCap := t.buildCapacities(root)
	t.alloc(root, rootCap.max.Cap(magnitude), result)
}

func (t *traversal) leafTiming(n *Node) core.Timing {
	if t.useDefault {
		return n.account.DefaultTiming()
	}
	return t.at
}

// buildCapacities is the bottom-up capacity pass: a pure function of
// the tree and the accounts' current dynamic limits.
func (t *traversal) buildCapacities(n *Node) capacity {
	var c capacity
	if n.IsLeaf() {
		at := t.leafTiming(n)
		if t.outflow {
			c.max = n.account.MaxOutflow(at)
			c.min = n.account.MinOutflow(at).Floor()
		} else {
			c.max = n.account.MaxInflow(at)
			c.min = n.account.MinInflow(at).Floor()
		}
		// A limited leaf node still defers to the stricter bound.
		c.max = c.max.Tighten(n.limits.Max(t.outflow))
	} else {
		sum := core.Bound(decimal.Zero)
		minSum := decimal.Zero
		for _, child := range n.children {
			childCap := t.buildCapacities(child)
			sum = sum.Add(childCap.max)
			minSum = minSum.Add(childCap.min)
		}
		c.max = n.limits.Max(t.outflow).Tighten(sum)
		c.min = minSum
	}
	if own := n.limits.Min(t.outflow).Floor(); own.GreaterThan(c.min) {
		c.min = own
	}
	c.min = c.max.Cap(c.min)
	t.caps[n] = c
	return c
}

// alloc is the top-down allocation pass. amount is a non-negative
// magnitude already clipped to the node's effective capacity.
func (t *traversal) alloc(n *Node, amount decimal.Decimal, result Result) {
	switch {
	case n.IsLeaf():
		if amount.IsZero() {
			return
		}
		signed := amount
		if t.outflow {
			signed = amount.Neg()
		}
		result.add(n.account, t.leafTiming(n), signed)
	case n.IsOrdered():
		t.allocOrdered(n, amount, result)
	default:
		t.allocWeighted(n, amount, result)
	}
}

func (t *traversal) allocOrdered(n *Node, amount decimal.Decimal, result Result) {
	assigned := make([]decimal.Decimal, len(n.children))
	remaining := amount

	if t.assignMinFirst {
		for i, child := range n.children {
			min := t.caps[child].min
			if min.GreaterThan(remaining) {
				min = remaining
			}
			assigned[i] = min
			remaining = remaining.Sub(min)
		}
	}

	for i, child := range n.children {
		if !remaining.IsPositive() {
			break
		}
		room := remainingRoom(t.caps[child].max, assigned[i])
		give := room.Cap(remaining)
		assigned[i] = assigned[i].Add(give)
		remaining = remaining.Sub(give)
	}

	for i, child := range n.children {
		if assigned[i].IsPositive() {
			t.alloc(child, assigned[i], result)
		}
	}
}

// allocWeighted apportions amount among children in proportion to
// their weights. Children whose capacity falls short of their
// proportional share are saturated and removed, and their excess is
// redistributed among the rest; each round saturates at least one
// child, so the loop runs at most once per child (water-filling).
func (t *traversal) allocWeighted(n *Node, amount decimal.Decimal, result Result) {
	assigned := make([]decimal.Decimal, len(n.children))
	remaining := amount

	// Descending weight, declaration order breaking ties.
	order := make([]int, len(n.children))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return n.weights[order[a]].GreaterThan(n.weights[order[b]])
	})

	if t.assignMinFirst {
		for _, i := range order {
			min := t.caps[n.children[i]].min
			if min.GreaterThan(remaining) {
				min = remaining
			}
			assigned[i] = min
			remaining = remaining.Sub(min)
		}
	}

	active := make([]int, 0, len(n.children))
	for _, i := range order {
		if n.weights[i].IsPositive() {
			active = append(active, i)
		}
	}

	for remaining.IsPositive() && len(active) > 0 {
		totalWeight := decimal.Zero
		for _, i := range active {
			totalWeight = totalWeight.Add(n.weights[i])
		}

		snapshot := remaining
		var next []int
		saturated := false
		for _, i := range active {
			share := snapshot.Mul(n.weights[i]).Div(totalWeight)
			room := remainingRoom(t.caps[n.children[i]].max, assigned[i])
			if roomValue, bounded := room.Value(); bounded && roomValue.LessThanOrEqual(share) {
				assigned[i] = assigned[i].Add(roomValue)
				remaining = remaining.Sub(roomValue)
				saturated = true
			} else {
				next = append(next, i)
			}
		}
		if saturated {
			active = next
			continue
		}

		// No child is capped below its share: hand out exact
		// proportional shares, with the final child absorbing the
		// division remainder so conservation holds exactly.
		for idx, i := range active {
			var give decimal.Decimal
			if idx == len(active)-1 {
				give = remaining
			} else {
				give = snapshot.Mul(n.weights[i]).Div(totalWeight)
			}
			assigned[i] = assigned[i].Add(give)
			remaining = remaining.Sub(give)
		}
		active = nil
	}
	// Any remaining amount stays unallocated at this node; it is not
	// pushed back up to siblings of n.

	for i, child := range n.children {
		if assigned[i].IsPositive() {
			t.alloc(child, assigned[i], result)
		}
	}
}

// remainingRoom is the capacity left under a maximum-type limit after
// part of it has been used.
func remainingRoom(limit core.Limit, used decimal.Decimal) core.Limit {
	if value, bounded := limit.Value(); bounded {
		return core.Bound(value.Sub(used))
	}
	return core.Unbounded()
}

func fillZeroLeaves(root *Node, result Result) {
	for _, account := range root.leaves(nil) {
		if _, ok := result[account]; !ok {
			result.add(account, account.DefaultTiming(), decimal.Zero)
		}
	}
}
