package operation

// Filter selects the operations taking part in an execution.
type Filter func(op KeyTriggerOperation) bool

// All accepts every operation.
func All(KeyTriggerOperation) bool { return true }

// OnlyAssemble accepts assemble operations.
func OnlyAssemble(op KeyTriggerOperation) bool {
	_, ok := op.(*AssembleOperation)
	return ok
}

// OnlyDisassemble accepts disassemble operations.
func OnlyDisassemble(op KeyTriggerOperation) bool {
	_, ok := op.(*DisassembleOperation)
	return ok
}

// MatchAnyGroup accepts operations tagged with at least one of groups.
func MatchAnyGroup(groups ...string) Filter {
	return func(op KeyTriggerOperation) bool {
		for _, g := range groups {
			if op.InGroup(g) {
				return true
			}
		}

		return false
	}
}

// MatchAllGroups accepts operations tagged with every one of groups.
func MatchAllGroups(groups ...string) Filter {
	return func(op KeyTriggerOperation) bool {
		for _, g := range groups {
			if !op.InGroup(g) {
				return false
			}
		}

		return true
	}
}

// MatchNoneOfGroups accepts operations tagged with none of groups.
func MatchNoneOfGroups(groups ...string) Filter {
	return Not(MatchAnyGroup(groups...))
}

// And accepts operations accepted by every filter.
func And(filters ...Filter) Filter {
	return func(op KeyTriggerOperation) bool {
		for _, f := range filters {
			if f != nil && !f(op) {
				return false
			}
		}

		return true
	}
}

// Or accepts operations accepted by any filter.
func Or(filters ...Filter) Filter {
	return func(op KeyTriggerOperation) bool {
		for _, f := range filters {
			if f != nil && f(op) {
				return true
			}
		}

		return false
	}
}

// Not inverts f.
func Not(f Filter) Filter {
	return func(op KeyTriggerOperation) bool { return !f(op) }
}

// Accept applies f, treating a nil filter as All.
func (f Filter) Accept(op KeyTriggerOperation) bool {
	return f == nil || f(op)
}
