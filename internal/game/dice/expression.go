package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression is a parsed attack expression: either a flat amount ("25") or
// Count dice of Sides faces plus Modifier ("2d6+3", "d20", "1d10-1").
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Parse parses expr into an Expression.
//
// Precondition: expr is non-empty.
// Postcondition: Returns an Expression with Count >= 1 and Sides >= 2, or a
// flat Expression with Count == 0, or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	if flat, err := strconv.Atoi(s); err == nil {
		if flat < 0 {
			return Expression{}, fmt.Errorf("dice: flat amount %q must not be negative", expr)
		}
		return Expression{Raw: expr, Modifier: flat}, nil
	}

	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}
	count := 1
	if m[1] != "" {
		count, _ = strconv.Atoi(m[1])
		if count < 1 {
			return Expression{}, fmt.Errorf("dice: die count in %q must be >= 1", expr)
		}
	}
	sides, _ := strconv.Atoi(m[2])
	if sides < 2 {
		return Expression{}, fmt.Errorf("dice: die sides in %q must be >= 2", expr)
	}
	mod := 0
	if m[3] != "" {
		mod, _ = strconv.Atoi(m[3])
	}
	return Expression{Raw: expr, Count: count, Sides: sides, Modifier: mod}, nil
}

// MustParse parses expr and panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}

// Roll evaluates e with src.
//
// Postcondition: len(result.Dice) == e.Count; a flat expression draws nothing.
func (e Expression) Roll(src Source) RollResult {
	rolled := make([]int, e.Count)
	for i := range rolled {
		rolled[i] = src.Intn(e.Sides) + 1
	}
	return RollResult{Expression: e.Raw, Dice: rolled, Modifier: e.Modifier}
}

// Min returns the smallest total e can produce.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the largest total e can produce.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// String returns the expression as written.
func (e Expression) String() string { return e.Raw }
