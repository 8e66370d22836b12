package domain

import "fmt"

// Resolution is the outcome of resolving an ERP reference. A defaulted
// resolution is best-effort and must not be treated as authoritative.
type Resolution struct {
	ID        int64
	Defaulted bool
	Reason    string
}

// Resolved wraps an id found through a mapping or an ERP search.
func Resolved(id int64) Resolution {
	return Resolution{ID: id}
}

// DefaultedTo wraps a fallback id together with why the fallback fired.
func DefaultedTo(id int64, reason string) Resolution {
	return Resolution{ID: id, Defaulted: true, Reason: reason}
}

func (r Resolution) String() string {
	if r.Defaulted {
		return fmt.Sprintf("defaulted(%d: %s)", r.ID, r.Reason)
	}
	return fmt.Sprintf("resolved(%d)", r.ID)
}
