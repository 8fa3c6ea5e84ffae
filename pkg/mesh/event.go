package mesh

// Event identifies the point in a pass at which a [Listener] is called.
type Event int

const (
	// EventTestEdge is sent before an edge is offered to a subdivision
	// predicate. a is the edge node, b its mate.
	EventTestEdge Event = iota
	// EventSplitEdge is sent after a vertex was inserted into an edge.
	// a and b are the two new nodes at the inserted vertex.
	EventSplitEdge
	// EventJoinOld is sent after an edge was created between two vertices
	// that existed before the pass. a and b are the new nodes.
	EventJoinOld
	// EventJoinNew is sent after an edge was created between two vertices
	// inserted by the pass.
	EventJoinNew
	// EventJoinMixed is sent after an edge was created between an old vertex
	// (a) and a vertex inserted by the pass (b).
	EventJoinMixed
)

var eventNames = [...]string{
	EventTestEdge:  "test-edge",
	EventSplitEdge: "split-edge",
	EventJoinOld:   "join-old",
	EventJoinNew:   "join-new",
	EventJoinMixed: "join-mixed",
}

// String returns a short name for the event.
func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[e]
}

// Listener receives notifications from passes that create nodes, so callers
// can attach payload such as interpolated attributes to new vertices.
type Listener interface {
	OnEvent(m *Mesh, ev Event, a, b NodeID)
}

// ListenerFunc adapts a function to the [Listener] interface.
type ListenerFunc func(m *Mesh, ev Event, a, b NodeID)

// OnEvent calls f(m, ev, a, b).
func (f ListenerFunc) OnEvent(m *Mesh, ev Event, a, b NodeID) { f(m, ev, a, b) }
