// Package parse extracts effect magnitudes from the free-text strings
// the data tables and card descriptions carry. All pattern matching for
// card and effect text lives here so the grammar stays in one testable
// place.
package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// manyDefault is the count the literal token "many" stands for.
const manyDefault = 3

var (
	numberRe    = regexp.MustCompile(`-?\d[\d,]*`)
	dollarRe    = regexp.MustCompile(`\$\s*(\d[\d,]*)\s*([kKmM])?`)
	timeUnitRe  = regexp.MustCompile(`(?i)(\d+)\s*(?:time\s+units?|days?|ticks?)`)
	drawCardRe  = regexp.MustCompile(`(?i)draw\s+(\d+)\s+card`)
	gainMoneyRe = regexp.MustCompile(`(?i)gain\s+\$?\s*(\d[\d,]*)\s*([kKmM])?`)
)

// Magnitude extracts the first number embedded in free text. The literal
// token "many" defaults to 3. Reports false when the text carries no
// magnitude at all.
func Magnitude(s string) (int, bool) {
	if strings.Contains(strings.ToLower(s), "many") {
		return manyDefault, true
	}
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsPercentage reports whether the text denotes a percentage change.
func IsPercentage(s string) bool {
	return strings.Contains(s, "%")
}

// Dollars extracts the first dollar figure in the text, honoring k/m
// magnitude suffixes ("$1.5M" is out of grammar; "$200k" is 200000).
func Dollars(s string) (int, bool) {
	m := dollarRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return applySuffix(m[1], m[2])
}

// GainedDollars extracts the figure from "gain $N" style phrases.
func GainedDollars(s string) (int, bool) {
	m := gainMoneyRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return applySuffix(m[1], m[2])
}

// TimeUnits extracts the count from "N time units" / "N days" phrases.
func TimeUnits(s string) (int, bool) {
	m := timeUnitRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DrawCount extracts N from "Draw N card(s)" phrases.
func DrawCount(s string) (int, bool) {
	m := drawCardRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func applySuffix(digits, suffix string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(digits, ",", ""))
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(suffix) {
	case "k":
		n *= 1000
	case "m":
		n *= 1000000
	}
	return n, true
}
