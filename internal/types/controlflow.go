package types

import (
	"encoding/json"
	"fmt"
)

// BlockType represents the kind of lexical region inside a function
type BlockType int

const (
	BlockUnknown BlockType = iota
	BlockEntry
	BlockExit
	BlockConditional
	BlockLoop
	BlockSwitch
	BlockTry
	BlockCatch
	BlockFinally
)

var blockTypeStrings = map[BlockType]string{
	BlockEntry:       "entry",
	BlockExit:        "exit",
	BlockConditional: "conditional",
	BlockLoop:        "loop",
	BlockSwitch:      "switch",
	BlockTry:         "try",
	BlockCatch:       "catch",
	BlockFinally:     "finally",
}

var blockTypeValues = reverseKindMap(blockTypeStrings)

// String returns a string representation of the block type
func (bt BlockType) String() string {
	if name, ok := blockTypeStrings[bt]; ok {
		return name
	}
	return "unknown"
}

// LocalComplexity returns the block's local complexity weight.
// Loops weigh 2, conditionals 1, all other block types 0.
func (bt BlockType) LocalComplexity() int {
	switch bt {
	case BlockLoop:
		return 2
	case BlockConditional:
		return 1
	}
	return 0
}

// MarshalJSON implements json.Marshaler
func (bt BlockType) MarshalJSON() ([]byte, error) {
	return json.Marshal(bt.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (bt *BlockType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, ok := blockTypeValues[s]
	if !ok {
		return fmt.Errorf("unknown block type: %q", s)
	}
	*bt = t
	return nil
}

// LoopType distinguishes loop constructs when BlockType is BlockLoop
type LoopType int

const (
	LoopNone LoopType = iota
	LoopFor
	LoopWhile
	LoopDoWhile
	LoopRangeFor
)

var loopTypeStrings = map[LoopType]string{
	LoopFor:      "for",
	LoopWhile:    "while",
	LoopDoWhile:  "do_while",
	LoopRangeFor: "range_for",
}

var loopTypeValues = reverseKindMap(loopTypeStrings)

// String returns a string representation of the loop type
func (lt LoopType) String() string {
	if name, ok := loopTypeStrings[lt]; ok {
		return name
	}
	return ""
}

// MarshalJSON implements json.Marshaler
func (lt LoopType) MarshalJSON() ([]byte, error) {
	return json.Marshal(lt.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (lt *LoopType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*lt = LoopNone
		return nil
	}
	t, ok := loopTypeValues[s]
	if !ok {
		return fmt.Errorf("unknown loop type: %q", s)
	}
	*lt = t
	return nil
}

// CallType represents how a call site dispatches
type CallType int

const (
	CallDirect CallType = iota
	CallVirtual
	CallTemplate
	CallFunctionPointer
	CallMethod
	CallSelfMethod
)

var callTypeStrings = map[CallType]string{
	CallDirect:          "direct",
	CallVirtual:         "virtual",
	CallTemplate:        "template",
	CallFunctionPointer: "function_pointer",
	CallMethod:          "method",
	CallSelfMethod:      "self_method",
}

var callTypeValues = reverseKindMap(callTypeStrings)

// String returns a string representation of the call type
func (ct CallType) String() string {
	if name, ok := callTypeStrings[ct]; ok {
		return name
	}
	return "direct"
}

// MarshalJSON implements json.Marshaler
func (ct CallType) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (ct *CallType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, ok := callTypeValues[s]
	if !ok {
		return fmt.Errorf("unknown call type: %q", s)
	}
	*ct = t
	return nil
}

// ControlFlowBlock is one lexical region inside a function body.
// Every function yields exactly one entry and one exit block; all other
// blocks chain to entry through ParentBlockID.
type ControlFlowBlock struct {
	ID         string    `json:"id"`
	SymbolName string    `json:"symbol_name"`
	BlockType  BlockType `json:"block_type"`
	StartLine  int       `json:"start_line"`
	EndLine    int       `json:"end_line"`

	// ParentBlockID is a lookup key into the same function's block set,
	// never an owning reference. Empty for the entry block.
	ParentBlockID string `json:"parent_block_id,omitempty"`

	Condition      string   `json:"condition,omitempty"`
	LoopType       LoopType `json:"loop_type,omitempty"`
	Complexity     int      `json:"complexity"`
	ExceptionTypes []string `json:"exception_types,omitempty"`
}

// ControlFlowCall is a call site located inside a function's blocks.
type ControlFlowCall struct {
	CallerName     string   `json:"caller_name"`
	TargetFunction string   `json:"target_function"`
	LineNumber     int      `json:"line_number"`
	ColumnNumber   int      `json:"column_number"`
	CallType       CallType `json:"call_type"`
	IsConditional  bool     `json:"is_conditional"`
	IsInLoop       bool     `json:"is_in_loop"`
	IsInTryCatch   bool     `json:"is_in_try_catch"`
}

// ControlFlowPath is an acyclic block sequence from entry toward exit.
// Paths are built after block extraction completes and are read-only.
type ControlFlowPath struct {
	SymbolName string   `json:"symbol_name"`
	BlockIDs   []string `json:"block_ids"`
	Complexity int      `json:"complexity"`
	IsComplete bool     `json:"is_complete"`
	IsCyclic   bool     `json:"is_cyclic"`
}

// ControlFlowData groups one file's block and call extraction output.
type ControlFlowData struct {
	Blocks []ControlFlowBlock `json:"blocks"`
	Calls  []ControlFlowCall  `json:"calls"`
	Paths  []ControlFlowPath  `json:"paths,omitempty"`
}
