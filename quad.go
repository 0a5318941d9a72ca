package n3

// Quad is four terms: subject, predicate, object and a graph name. A nil
// Graph denotes the default graph; a non-nil Graph is always a Blank
// naming the formula the triple was quoted inside.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term // nil (default graph) or Blank
}

// DefaultGraph reports whether q belongs to the top-level default graph,
// as opposed to a quoted formula.
func (q Quad) DefaultGraph() bool {
	return q.Graph == nil
}

func (q Quad) String() string {
	if q.DefaultGraph() {
		return q.Subject.String() + " " + q.Predicate.String() + " " + q.Object.String() + " ."
	}
	return q.Subject.String() + " " + q.Predicate.String() + " " + q.Object.String() + " " + q.Graph.String() + " ."
}
