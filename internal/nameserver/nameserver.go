/*
 * file: nameserver.go
 * package: nameserver
 * description:
 *     Uniqueifies desired player/spectator names across the process
 *     lifetime. Names are never released once assigned.
 */

package nameserver

import (
	"fmt"
	"sync"
)

// Nameserver assigns collision-free names. Safe for concurrent use.
type Nameserver struct {
	mu       sync.Mutex
	assigned map[string]struct{}
}

// New returns an empty Nameserver.
func New() *Nameserver {
	return &Nameserver{assigned: make(map[string]struct{})}
}

// Assign reserves and returns a name derived from desired: desired itself
// if free, otherwise "desired_<roman(n)>" for the smallest n >= 1 that is
// still unassigned.
func (n *Nameserver) Assign(desired string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, taken := n.assigned[desired]; !taken {
		n.assigned[desired] = struct{}{}
		return desired
	}

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%s", desired, roman(i))
		if _, taken := n.assigned[candidate]; !taken {
			n.assigned[candidate] = struct{}{}
			return candidate
		}
	}
}
