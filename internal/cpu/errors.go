package cpu

import "fmt"

// UnimplementedConditionError reports a condition code outside the set
// this core evaluates.
type UnimplementedConditionError struct {
	Cond  uint32
	PC    uint32
	Instr uint32
}

func (e *UnimplementedConditionError) Error() string {
	return fmt.Sprintf("unimplemented condition %X: instruction %08X at %08X", e.Cond, e.Instr, e.PC)
}

// UnimplementedOpcodeError reports an instruction that decoded to a known
// family but selects a variant this core does not model.
type UnimplementedOpcodeError struct {
	Reason string
	PC     uint32
	Instr  uint32
}

func (e *UnimplementedOpcodeError) Error() string {
	return fmt.Sprintf("unimplemented %s: instruction %08X at %08X", e.Reason, e.Instr, e.PC)
}

// DecodeUnknownError reports an instruction word the dispatch table could
// not classify.
type DecodeUnknownError struct {
	PC    uint32
	Instr uint32
}

func (e *DecodeUnknownError) Error() string {
	return fmt.Sprintf("unknown instruction %08X at %08X", e.Instr, e.PC)
}
