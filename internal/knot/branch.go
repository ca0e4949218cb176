package knot

import "fmt"

// Branch selects the theory variant shown in the overlay badge.
type Branch uint8

const (
	RQNTC Branch = iota
	RQNTV
)

func (b Branch) String() string {
	if b == RQNTV {
		return "R-QNT-V"
	}
	return "R-QNT-C"
}

func (b Branch) Toggle() Branch {
	if b == RQNTC {
		return RQNTV
	}
	return RQNTC
}

func ParseBranch(s string) (Branch, error) {
	switch s {
	case "", "R-QNT-C", "rqntc", "c":
		return RQNTC, nil
	case "R-QNT-V", "rqntv", "v":
		return RQNTV, nil
	}
	return 0, fmt.Errorf("knot: unknown branch %q", s)
}
