package ivc

import "github.com/reilabs/nova-ivc/internal/r1cs"

// ResourceBuffer holds the scratch space one RecursiveSNARK reuses
// across every Verify call instead of reallocating it: the dense
// Az/Bz/Cz buffers for each side's shape. It is owned exclusively by
// one RecursiveSNARK and must never be shared across concurrent
// provers or re-entrant calls.
type ResourceBuffer struct {
	Primary   *r1cs.MulResult
	Secondary *r1cs.MulResult
}

// NewResourceBuffer allocates scratch sized for both sides' shapes.
func NewResourceBuffer(primary, secondary *r1cs.Shape) *ResourceBuffer {
	return &ResourceBuffer{
		Primary:   r1cs.NewMulResult(primary),
		Secondary: r1cs.NewMulResult(secondary),
	}
}
