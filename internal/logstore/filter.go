package logstore

import "fmt"

// Kind selects how Store.Read narrows the records it returns.
type Kind int

const (
	// All returns every decoded record.
	All Kind = iota
	// LastN returns the last N decoded records (fewer if the file has fewer).
	LastN
	// SinceSeconds returns records whose timestamp is >= now-Seconds.
	SinceSeconds
)

// Filter selects a view over a log file. The HTTP surface is responsible for
// rejecting mutually exclusive query parameters before constructing one of
// these; Store.Read trusts whatever Filter it is given.
type Filter struct {
	Kind    Kind
	N       int // valid when Kind == LastN; must be >= 1
	Seconds int // valid when Kind == SinceSeconds; must be >= 1
}

func NewAllFilter() Filter { return Filter{Kind: All} }

func NewLastNFilter(n int) (Filter, error) {
	if n < 1 {
		return Filter{}, fmt.Errorf("lines must be >= 1, got %d", n)
	}
	return Filter{Kind: LastN, N: n}, nil
}

func NewSinceSecondsFilter(s int) (Filter, error) {
	if s < 1 {
		return Filter{}, fmt.Errorf("seconds must be >= 1, got %d", s)
	}
	return Filter{Kind: SinceSeconds, Seconds: s}, nil
}
