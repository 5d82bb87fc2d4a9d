package syntax

import "fmt"

var (
	// MaxRepeat bounds the counts in {n}, {n,}, and {n,m}.
	MaxRepeat = 1000

	// MaxCost is the default limit for CheckCost.
	MaxCost = 8000
)

// BadCount is returned for a repetition count that's negative or
// larger than MaxRepeat.
type BadCount struct {
	Count int
}

func (e *BadCount) Error() string {
	if e.Count < 0 {
		return fmt.Sprintf("negative repetition count %d", e.Count)
	}
	return fmt.Sprintf("repetition count %d exceeds %d", e.Count, MaxRepeat)
}

// CheckCount returns a *BadCount if n isn't in [0,MaxRepeat].
func CheckCount(n int) error {
	if n < 0 || MaxRepeat < n {
		return &BadCount{n}
	}
	return nil
}

// TooCostly is returned by CheckCost.
type TooCostly struct {
	Limit int
}

func (e *TooCostly) Error() string {
	return fmt.Sprintf("expression is too large to compile (limit %d)", e.Limit)
}

// CheckCost returns a *TooCostly if compiling e would cost more than
// limit (see core.Expression.Cost).  A limit that's not positive
// means MaxCost.
func CheckCost(e Expression, limit int) error {
	if limit <= 0 {
		limit = MaxCost
	}
	if limit < e.Cost(limit) {
		return &TooCostly{limit}
	}
	return nil
}
