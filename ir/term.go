package ir

// TermID addresses a term in a Graph arena.
type TermID int32

// NoTerm is the zero reference; no term has this id.
const NoTerm TermID = -1

// Kind identifies the variant of a term.
type Kind uint8

const (
	KindLiteral   Kind = iota // integer constant
	KindRegion                // region entry: ordered operand bindings
	KindRegionEnd             // region exit: region + output ports
	KindIfElse                // two-branch conditional over shared operands
	KindUnpack                // projection of the n-th output of a multi-output term
	KindApply                 // computed value: named operation over arguments
	KindTuple                 // aggregate of values, used as a graph root
)

var kindNames = [...]string{
	KindLiteral:   "int",
	KindRegion:    "region",
	KindRegionEnd: "end",
	KindIfElse:    "ifelse",
	KindUnpack:    "unpack",
	KindApply:     "apply",
	KindTuple:     "tuple",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Port is one named output slot of a region.
type Port struct {
	Name  string
	Value TermID
}

// Term is an IR node stored in a Graph.
//
// Operand layout by kind:
//
//	Literal    Value
//	Region     Names (operand bindings, names optional)
//	RegionEnd  Args[0]=region, Ports
//	IfElse     Args[0]=cond, Args[1]=then, Args[2]=else, Args[3:]=operands
//	Unpack     Args[0]=source, Value=index
//	Apply      Name, Args
//	Tuple      Args
type Term struct {
	Name  string
	Names []string
	Args  []TermID
	Ports []Port
	Value int64
	Kind  Kind
}

// Region returns the region a RegionEnd closes.
func (t *Term) Region() TermID { return t.Args[0] }

// Cond returns the predicate of an IfElse.
func (t *Term) Cond() TermID { return t.Args[0] }

// Then returns the then-branch of an IfElse.
func (t *Term) Then() TermID { return t.Args[1] }

// Else returns the else-branch of an IfElse.
func (t *Term) Else() TermID { return t.Args[2] }

// Operands returns the operand list shared by both branches of an IfElse.
func (t *Term) Operands() []TermID { return t.Args[3:] }

// Source returns the term an Unpack projects from.
func (t *Term) Source() TermID { return t.Args[0] }

// Index returns the output position an Unpack projects.
func (t *Term) Index() int { return int(t.Value) }

// Arity returns the operand count of a Region.
func (t *Term) Arity() int { return len(t.Names) }

// children calls fn for every term referenced by t, in operand order.
func (t *Term) children(fn func(TermID)) {
	for _, a := range t.Args {
		fn(a)
	}
	for _, p := range t.Ports {
		fn(p.Value)
	}
}
