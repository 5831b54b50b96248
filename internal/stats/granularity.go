package stats

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyfocus/internal/domain"
)

// Granularity selects the bucketing of a report.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Granularities lists the accepted values in display order.
var Granularities = []Granularity{Daily, Weekly, Monthly}

// ParseGranularity converts user input into a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case Daily, Weekly, Monthly:
		return g, nil
	}
	return "", fmt.Errorf("view %q must be one of daily, weekly, monthly: %w", s, domain.ErrValidation)
}

// String, Set and Type make *Granularity usable as a command-line flag value.
func (g *Granularity) String() string {
	if g == nil || *g == "" {
		return string(Daily)
	}
	return string(*g)
}

func (g *Granularity) Set(s string) error {
	parsed, err := ParseGranularity(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

func (g *Granularity) Type() string {
	return "view"
}
