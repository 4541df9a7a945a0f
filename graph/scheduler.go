package graph

// EnsureScheduled rebuilds the cached visit order and strongly-connected
// components if the graph has been structurally mutated since the last
// rebuild. The rebuild is idempotent: calling it again with no mutation in
// between is a no-op. Callers (the engine's Process, and Allocate/
// ResizeBuffers where order matters) check this at the start of every
// call, per the lazy-rebuild contract.
func (g *Graph) EnsureScheduled() {
	if !g.needsReschedule {
		return
	}
	g.visitOrder = g.computeVisitOrder()
	g.sccs, g.sccSelfLoop = g.computeSCCs()
	g.needsReschedule = false
}

// VisitOrder returns the cached reverse-postorder DFS walk from external
// sources (nodes with no incoming edges), rebuilding first if dirty. Ties
// among siblings are broken by insertion order. The returned slice is the
// scheduler's own cache, reused across calls to keep Process allocation-
// free when the topology is unchanged; callers must treat it as read-only.
func (g *Graph) VisitOrder() []NodeID {
	g.EnsureScheduled()
	return g.visitOrder
}

// SCCs returns the cached strongly-connected components in
// reverse-topological order (index 0 holds producers with no dependency
// on anything in a later SCC), rebuilding first if dirty. As with
// VisitOrder, this is the scheduler's own cache: read-only, reused across
// calls so a stable topology never allocates here.
func (g *Graph) SCCs() [][]NodeID {
	g.EnsureScheduled()
	return g.sccs
}

// IsTrivialSCC reports whether scc is a single node with no self-loop,
// i.e. whether it should run once in block mode rather than once per
// sample. A single-node SCC *with* a self-edge is not trivial: it must
// still run per-sample so the edge's 1-sample delay is observable.
func (g *Graph) IsTrivialSCC(scc []NodeID) bool {
	return len(scc) == 1 && !g.HasSelfLoop(scc[0])
}

// computeVisitOrder performs a reverse-postorder DFS starting from every
// node with no incoming edges (in insertion order), visiting successors in
// insertion order for determinism, and reverses the postorder so that
// producers precede consumers.
func (g *Graph) computeVisitOrder() []NodeID {
	visited := make(map[NodeID]bool, len(g.nodes))
	var postorder []NodeID

	var visit func(id NodeID)
	visit = func(id NodeID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, e := range g.outgoing[id] {
			if e.Target != id {
				visit(e.Target)
			}
		}
		postorder = append(postorder, id)
	}

	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			visit(id)
		}
	}
	// Any node unreached from a zero-in-degree root (e.g. purely inside a
	// cycle with no external feed) still needs a deterministic slot.
	for _, id := range g.order {
		visit(id)
	}

	reverse := make([]NodeID, len(postorder))
	for i, id := range postorder {
		reverse[len(postorder)-1-i] = id
	}
	return reverse
}

// computeSCCs runs Tarjan's strongly-connected-components algorithm over
// the graph's adjacency, then reverses the result so that index 0 holds
// components with no outstanding dependency on a later component (i.e.
// reverse-topological order, producers first).
func (g *Graph) computeSCCs() ([][]NodeID, []bool) {
	type tstate struct {
		index   int
		lowlink int
		onStack bool
	}

	indexCounter := 0
	stack := make([]NodeID, 0, len(g.nodes))
	state := make(map[NodeID]*tstate, len(g.nodes))
	var sccs [][]NodeID

	var strongconnect func(v NodeID)
	strongconnect = func(v NodeID) {
		st := &tstate{index: indexCounter, lowlink: indexCounter, onStack: true}
		state[v] = st
		indexCounter++
		stack = append(stack, v)

		for _, e := range g.outgoing[v] {
			w := e.Target
			if ws, ok := state[w]; !ok {
				strongconnect(w)
				if state[w].lowlink < st.lowlink {
					st.lowlink = state[w].lowlink
				}
			} else if ws.onStack {
				if ws.index < st.lowlink {
					st.lowlink = ws.index
				}
			}
		}

		if st.lowlink == st.index {
			var component []NodeID
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				state[w].onStack = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, component)
		}
	}

	for _, id := range g.order {
		if _, ok := state[id]; !ok {
			strongconnect(id)
		}
	}

	// Tarjan emits components in the order they finish, which is
	// consumers-first (a component is only popped once everything
	// reachable from it has been fully explored). Reverse so index 0
	// holds producers with no outstanding dependency on a later
	// component, matching original_source graph/mod.rs's
	// self.sccs.reverse(). Each component's own node order is
	// deterministic (stack-pop order); normalize it to insertion order
	// for a stable presentation.
	orderIndex := make(map[NodeID]int, len(g.order))
	for i, id := range g.order {
		orderIndex[id] = i
	}
	for i, j := 0, len(sccs)-1; i < j; i, j = i+1, j-1 {
		sccs[i], sccs[j] = sccs[j], sccs[i]
	}
	selfLoop := make([]bool, len(sccs))
	for i, scc := range sccs {
		sortByInsertionOrder(scc, orderIndex)
		if len(scc) == 1 {
			selfLoop[i] = g.HasSelfLoop(scc[0])
		} else {
			selfLoop[i] = true // any non-trivial SCC runs per-sample
		}
	}
	return sccs, selfLoop
}

func sortByInsertionOrder(ids []NodeID, orderIndex map[NodeID]int) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && orderIndex[ids[j-1]] > orderIndex[ids[j]]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
