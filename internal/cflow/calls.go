package cflow

import "github.com/standardbeagle/sci/internal/types"

// Call records a call observed at the builder's current position,
// stamping it with the enclosing conditional/loop/try context.
func (b *Builder) Call(target string, line, column int, callType types.CallType) types.ControlFlowCall {
	isConditional, isInLoop, isInTryCatch := b.Flags()
	return types.ControlFlowCall{
		CallerName:     b.symbolName,
		TargetFunction: target,
		LineNumber:     line,
		ColumnNumber:   column,
		CallType:       callType,
		IsConditional:  isConditional,
		IsInLoop:       isInLoop,
		IsInTryCatch:   isInTryCatch,
	}
}
