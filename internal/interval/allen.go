package interval

// Relation is one of Allen's thirteen qualitative relations between two
// well-formed intervals. For any well-formed pair exactly one relation
// holds; Classify is the total function that picks it.
type Relation uint8

const (
	Before Relation = iota
	Meets
	Overlaps
	Starts
	During
	Finishes
	Equals
	FinishedBy
	Contains
	StartedBy
	OverlappedBy
	MetBy
	After
)

var relationNames = [...]string{
	Before:       "before",
	Meets:        "meets",
	Overlaps:     "overlaps",
	Starts:       "starts",
	During:       "during",
	Finishes:     "finishes",
	Equals:       "equals",
	FinishedBy:   "finished-by",
	Contains:     "contains",
	StartedBy:    "started-by",
	OverlappedBy: "overlapped-by",
	MetBy:        "met-by",
	After:        "after",
}

func (r Relation) String() string {
	if int(r) < len(relationNames) {
		return relationNames[r]
	}
	return "unknown"
}

// AllRelations lists the thirteen relations in canonical order, for callers
// that enumerate them (tests, the Datalog built-in dispatch table).
var AllRelations = []Relation{
	Before, Meets, Overlaps, Starts, During, Finishes, Equals,
	FinishedBy, Contains, StartedBy, OverlappedBy, MetBy, After,
}

// The seven base predicates; the remaining six are argument swaps.

func IsBefore(a, b Interval) bool { return a.End < b.Start }

func IsMeets(a, b Interval) bool { return a.End == b.Start }

func IsOverlaps(a, b Interval) bool {
	return a.Start < b.Start && b.Start < a.End && a.End < b.End
}

func IsStarts(a, b Interval) bool { return a.Start == b.Start && a.End < b.End }

func IsDuring(a, b Interval) bool { return b.Start < a.Start && a.End < b.End }

func IsFinishes(a, b Interval) bool { return a.Start > b.Start && a.End == b.End }

func IsEquals(a, b Interval) bool { return a.Start == b.Start && a.End == b.End }

func IsFinishedBy(a, b Interval) bool { return IsFinishes(b, a) }

func IsContains(a, b Interval) bool { return IsDuring(b, a) }

func IsStartedBy(a, b Interval) bool { return IsStarts(b, a) }

func IsOverlappedBy(a, b Interval) bool { return IsOverlaps(b, a) }

func IsMetBy(a, b Interval) bool { return IsMeets(b, a) }

func IsAfter(a, b Interval) bool { return IsBefore(b, a) }

// Holds evaluates one named relation on (a, b).
func (r Relation) Holds(a, b Interval) bool {
	switch r {
	case Before:
		return IsBefore(a, b)
	case Meets:
		return IsMeets(a, b)
	case Overlaps:
		return IsOverlaps(a, b)
	case Starts:
		return IsStarts(a, b)
	case During:
		return IsDuring(a, b)
	case Finishes:
		return IsFinishes(a, b)
	case Equals:
		return IsEquals(a, b)
	case FinishedBy:
		return IsFinishedBy(a, b)
	case Contains:
		return IsContains(a, b)
	case StartedBy:
		return IsStartedBy(a, b)
	case OverlappedBy:
		return IsOverlappedBy(a, b)
	case MetBy:
		return IsMetBy(a, b)
	case After:
		return IsAfter(a, b)
	}
	return false
}

// Classify returns the single relation holding between a and b.
func Classify(a, b Interval) (Relation, error) {
	if err := checkOperands(a, b); err != nil {
		return Before, err
	}
	for _, r := range AllRelations {
		if r.Holds(a, b) {
			return r, nil
		}
	}
	// Unreachable for well-formed operands: the thirteen relations
	// partition the space of endpoint orderings.
	panic("no Allen relation matched a well-formed interval pair")
}
