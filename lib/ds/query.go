package ds

import (
	"math"
	"sort"
	"strings"
)

// --------------------------------------------------------------------------
// Query Description Types
// --------------------------------------------------------------------------

// NoLimit disables the result count cap of a query.
// Note that a Limit of 0 is taken literally and yields no results.
const NoLimit = uint64(math.MaxUint64)

// Entry is a single key-value pair, as produced by query evaluation.
type Entry[T Value[T]] struct {
	Key   string
	Value T
}

// FilterOp is the comparison operator of a value filter.
type FilterOp int

const (
	FilterEqual FilterOp = iota
	FilterNotEqual
	FilterLessThan
	FilterLessOrEqual
	FilterGreaterThan
	FilterGreaterOrEqual
)

func (op FilterOp) String() string {
	switch op {
	case FilterEqual:
		return "Equal"
	case FilterNotEqual:
		return "NotEqual"
	case FilterLessThan:
		return "LessThan"
	case FilterLessOrEqual:
		return "LessOrEqual"
	case FilterGreaterThan:
		return "GreaterThan"
	case FilterGreaterOrEqual:
		return "GreaterOrEqual"
	default:
		return "Unknown"
	}
}

// matches reports whether a comparison result satisfies the operator.
// cmp is the result of value.Compare(literal).
func (op FilterOp) matches(cmp int) bool {
	switch op {
	case FilterEqual:
		return cmp == 0
	case FilterNotEqual:
		return cmp != 0
	case FilterLessThan:
		return cmp < 0
	case FilterLessOrEqual:
		return cmp <= 0
	case FilterGreaterThan:
		return cmp > 0
	case FilterGreaterOrEqual:
		return cmp >= 0
	default:
		return false
	}
}

// Filter retains only entries whose value satisfies Op against the literal
// Value, using the value type's total ordering.
type Filter[T Value[T]] struct {
	Op    FilterOp
	Value T
}

// Order is a single sort criterion over keys or values.
type Order int

const (
	OrderByKeyAsc Order = iota
	OrderByKeyDesc
	OrderByValueAsc
	OrderByValueDesc
)

func (o Order) String() string {
	switch o {
	case OrderByKeyAsc:
		return "ByKeyAsc"
	case OrderByKeyDesc:
		return "ByKeyDesc"
	case OrderByValueAsc:
		return "ByValueAsc"
	case OrderByValueDesc:
		return "ByValueDesc"
	default:
		return "Unknown"
	}
}

// compare applies the criterion to two entries.
func compareEntries[T Value[T]](o Order, a, b Entry[T]) int {
	switch o {
	case OrderByKeyAsc:
		return strings.Compare(a.Key, b.Key)
	case OrderByKeyDesc:
		return strings.Compare(b.Key, a.Key)
	case OrderByValueAsc:
		return a.Value.Compare(b.Value)
	case OrderByValueDesc:
		return b.Value.Compare(a.Value)
	default:
		return 0
	}
}

// Query is an immutable description of a datastore query. It owns no data
// and has no side effects until evaluated.
//
// The zero value matches every entry by prefix but returns nothing because
// Limit is 0; callers wanting an uncapped result set Limit to NoLimit.
type Query[T Value[T]] struct {
	// Prefix retains only entries whose key starts with it.
	// The empty prefix matches everything.
	Prefix string
	// Filters is an ordered list of value predicates.
	// All filters must pass for an entry to survive.
	Filters []Filter[T]
	// Orders is the sort criteria chain. The first criterion is the primary
	// sort key, subsequent criteria break ties in list order.
	Orders []Order
	// Skip drops the first Skip entries of the ordered result.
	Skip uint64
	// Limit caps the number of returned entries. 0 yields no results,
	// NoLimit disables the cap.
	Limit uint64
	// KeysOnly replaces every returned value with the zero value of T.
	KeysOnly bool
}

// --------------------------------------------------------------------------
// Query Evaluation Pipeline
// --------------------------------------------------------------------------

// ApplyQuery evaluates q over a snapshot of entries and returns the matching
// entries. The stages run eagerly and in a fixed order: prefix selection,
// conjunctive value filtering, stable multi-criteria sorting, pagination
// (skip then limit) and finally the keys-only projection.
//
// The input slice is treated as an owned snapshot: entries must already be
// detached from live datastore state. ApplyQuery never modifies the input
// slice itself but reorders and re-slices its own copy of it.
func ApplyQuery[T Value[T]](entries []Entry[T], q Query[T]) []Entry[T] {

	// Stage 1+2: prefix selection and conjunctive filtering in one pass
	matched := make([]Entry[T], 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Key, q.Prefix) {
			continue
		}
		ok := true
		for _, f := range q.Filters {
			if !f.Op.matches(e.Value.Compare(f.Value)) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, e)
		}
	}

	// Stage 3: stable sort with the order chain as tie-breakers
	if len(q.Orders) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, o := range q.Orders {
				if c := compareEntries(o, matched[i], matched[j]); c != 0 {
					return c < 0
				}
			}
			return false
		})
	}

	// Stage 4: pagination
	if q.Skip >= uint64(len(matched)) {
		matched = matched[:0]
	} else {
		matched = matched[q.Skip:]
	}
	if uint64(len(matched)) > q.Limit {
		matched = matched[:q.Limit]
	}

	// Stage 5: keys-only projection
	if q.KeysOnly {
		var zero T
		for i := range matched {
			matched[i].Value = zero
		}
	}

	return matched
}
