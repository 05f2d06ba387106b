package analysis

import "github.com/wippyai/rvsdg/ir"

// PrunePorts returns the ports whose index is not marked in mask, in
// their original order. ports is not modified.
func PrunePorts(ports []ir.Port, mask *Mask) []ir.Port {
	out := make([]ir.Port, 0, len(ports))
	for i, p := range ports {
		if !mask.ShouldEliminate(i) {
			out = append(out, p)
		}
	}
	return out
}
