package rules

import (
	"strconv"
	"strings"

	"github.com/unravel-games/code2027-server-go/internal/game/state"
)

// EvaluateCondition checks a data-table condition string against a
// player's numeric state. The grammar covers the literal "always" (and
// the empty string), plus threshold clauses of the form
// "<subject> <op> <value>", where subject is one of money, time, scope,
// or cards, op is one of < <= > >= ==, and value accepts $, commas, and
// k/m magnitude suffixes. Underscores are interchangeable with spaces,
// so "scope_le_4m" and "scope <= $4M" are equivalent. Unknown
// conditions evaluate to false; the evaluator never errors.
func EvaluateCondition(p *state.Player, cond string) bool {
	cond = strings.ToLower(strings.TrimSpace(cond))
	switch cond {
	case "", "always":
		return true
	case "never":
		return false
	}

	fields := strings.Fields(strings.ReplaceAll(cond, "_", " "))
	if len(fields) != 3 {
		return false
	}
	subject, ok := conditionSubject(p, fields[0])
	if !ok {
		return false
	}
	value, ok := parseConditionValue(fields[2])
	if !ok {
		return false
	}
	switch fields[1] {
	case "<", "lt":
		return subject < value
	case "<=", "le":
		return subject <= value
	case ">", "gt":
		return subject > value
	case ">=", "ge":
		return subject >= value
	case "==", "=", "eq":
		return subject == value
	}
	return false
}

func conditionSubject(p *state.Player, name string) (int, bool) {
	switch name {
	case "money":
		return p.Money, true
	case "time":
		return p.TimeSpent, true
	case "scope":
		return p.ProjectScope, true
	case "cards":
		total := 0
		for _, ids := range p.Available {
			total += len(ids)
		}
		return total, true
	}
	return 0, false
}

// parseConditionValue reads a threshold number, tolerating "$", commas,
// and k/m suffixes ("$4m" == 4000000).
func parseConditionValue(s string) (int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.ReplaceAll(s, ",", "")
	mult := 1
	switch {
	case strings.HasSuffix(s, "m"):
		mult = 1000000
		s = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "k"):
		mult = 1000
		s = strings.TrimSuffix(s, "k")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f * float64(mult)), true
}
