package chingus

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage keeps Offset within int for any clamped limit.
	MaxPage = math.MaxInt/MaxLimit + 1
)

// Page is a clamped page request.
type Page struct {
	Number int
	Limit  int
}

// ParsePage coerces raw page and limit parameters. It never fails: page values that are
// not integers or are below 1 become 1, and pages past MaxPage become MaxPage. A
// non-integer limit becomes DefaultLimit. The limit is then clamped to [1, MaxLimit].
func ParsePage(rawPage, rawLimit string) Page {
	page, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	page = min(page, MaxPage)
	limit, err := strconv.Atoi(strings.TrimSpace(rawLimit))
	if err != nil {
		limit = DefaultLimit
	}
	return Page{Number: page, Limit: clamp(limit, 1, MaxLimit)}
}

// Offset is the number of records to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages returns ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
