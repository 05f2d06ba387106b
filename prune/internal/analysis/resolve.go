package analysis

// Resolve returns the passthroughs common to both branches: the exact
// intersection of their mapping sets, restricted to operands that exist in
// the IfElse operand list.
func Resolve(then, orelse MappingSet, operandCount int) MappingSet {
	common := then.Intersect(orelse)
	for m := range common {
		if m.Src < 0 || m.Src >= operandCount {
			delete(common, m)
		}
	}
	return common
}
