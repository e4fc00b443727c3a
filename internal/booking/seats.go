package booking

import (
	"fmt"
	"sort"
	"strconv"
)

// Seat identifier grammar: one row letter A–J followed by a column
// number 1–10, giving 100 possible seats per show. Identifiers are a
// validated string token, not a stored row.
const (
	minRow = 'A'
	maxRow = 'J'
	minCol = 1
	maxCol = 10

	// MaxSeatsPerOrder bounds how many seats one checkout may claim.
	MaxSeatsPerOrder = 6
)

// ValidSeatLabel reports whether s is a well-formed seat identifier.
// The grammar is strict: upper-case row letter followed by bare digits,
// no zero padding, no sign, no surrounding whitespace. "A1" and "J10"
// are valid; "K1", "A11", "A01", "A+1", "a0" and "" are not. The column
// bytes are checked directly so only the grid's 100 labels pass.
func ValidSeatLabel(s string) bool {
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	row := s[0]
	if row < minRow || row > maxRow {
		return false
	}
	if len(s) == 2 {
		return s[1] >= '1' && s[1] <= '9'
	}
	// the only valid two-digit column is 10
	return s[1] == '1' && s[2] == '0'
}

// NormalizeSeatList validates a requested seat list against the seat
// grammar and the per-order count bound, rejects duplicates, and
// returns the seats in a deterministic sorted order. All violations
// surface as *ValidationError.
func NormalizeSeatList(seats []string) ([]string, error) {
	if len(seats) == 0 {
		return nil, &ValidationError{Msg: "at least one seat is required"}
	}
	if len(seats) > MaxSeatsPerOrder {
		return nil, &ValidationError{Msg: fmt.Sprintf("at most %d seats per order", MaxSeatsPerOrder)}
	}
	seen := make(map[string]struct{}, len(seats))
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		if !ValidSeatLabel(s) {
			return nil, &ValidationError{Msg: fmt.Sprintf("invalid seat identifier %q", s)}
		}
		if _, dup := seen[s]; dup {
			return nil, &ValidationError{Msg: fmt.Sprintf("duplicate seat %q", s)}
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	// sort row-major so conflict lists and stored seat sets are stable
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		ci, _ := strconv.Atoi(out[i][1:])
		cj, _ := strconv.Atoi(out[j][1:])
		return ci < cj
	})
	return out, nil
}

// AllSeatLabels enumerates every seat of the fixed A–J × 1–10 grid in
// row-major order. Used to render full availability maps.
func AllSeatLabels() []string {
	out := make([]string, 0, int(maxRow-minRow+1)*maxCol)
	for r := byte(minRow); r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			out = append(out, string(r)+strconv.Itoa(c))
		}
	}
	return out
}
