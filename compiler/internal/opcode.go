package internal

import (
	"fmt"
)

// Opcode is an interpreter operation. Every opcode but O_LOAD_F and O_HALT exists once per
// scalar type, O_ADD_I, O_ADD_C and O_ADD_D for example.
type Opcode int

const (
	StoreOpcode Opcode = iota
	LoadOpcode
	ModifyOpcode
	AddOpcode
	SubOpcode
	MulOpcode
	DivOpcode
	LoadFunctionOpcode
	HaltOpcode
)

var opcodeNames = []string{"O_STORE", "O_LOAD", "O_MODIFY", "O_ADD", "O_SUB", "O_MUL", "O_DIV", "O_LOAD_F", "O_HALT"}

func (op Opcode) String() string {
	return opcodeNames[op]
}

// typed returns the name of op for operands of type tp.
func (op Opcode) typed(tp VarType, line int) (string, error) {
	if op == LoadFunctionOpcode || op == HaltOpcode {
		return op.String(), nil
	}
	switch tp {
	case IntVariableType:
		return op.String() + "_I", nil
	case CharVariableType:
		return op.String() + "_C", nil
	case DoubleVariableType:
		return op.String() + "_D", nil
	}
	return "", fmt.Errorf("%w %s for type %s at line %d", ErrOpcodeNotFound, op, VariableType{TP: tp}, line)
}

func arithmeticOpcode(op *OpAst) Opcode {
	switch op.Op {
	case AddOpTP:
		return AddOpcode
	case MinusOpTP:
		return SubOpcode
	case MultipleOpTP:
		return MulOpcode
	}
	return DivOpcode
}

// arithmetic applies op to left and right, both converted to tp.
func arithmetic(op Opcode, tp VarType, left, right Value, line int) (Value, error) {
	name, err := op.typed(tp, line)
	if err != nil {
		return Value{}, err
	}
	interpreterT().Debugf("%s %s %s", name, left, right)
	if tp == DoubleVariableType {
		l, r := left.AsReal(), right.AsReal()
		switch op {
		case AddOpcode:
			return realValue(l + r), nil
		case SubOpcode:
			return realValue(l - r), nil
		case MulOpcode:
			return realValue(l * r), nil
		}
		return realValue(l / r), nil
	}
	l, r := left.Convert(tp).Int, right.Convert(tp).Int
	var ret int
	switch op {
	case AddOpcode:
		ret = l + r
	case SubOpcode:
		ret = l - r
	case MulOpcode:
		ret = l * r
	default:
		if r == 0 {
			return Value{}, fmt.Errorf("%w: division by zero at line %d", ErrRuntime, line)
		}
		ret = l / r
	}
	return intValue(ret).Convert(tp), nil
}

// compare evaluates a comparison in double when either side is a double, in int otherwise.
func compare(op *OpAst, left, right Value) Value {
	var cmp int
	if left.TP == DoubleVariableType || right.TP == DoubleVariableType {
		l, r := left.AsReal(), right.AsReal()
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	} else {
		l, r := left.AsInt(), right.AsInt()
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	}
	var ret bool
	switch op.Op {
	case LessOpTP:
		ret = cmp < 0
	case LessEqualOpTP:
		ret = cmp <= 0
	case GreaterOpTP:
		ret = cmp > 0
	case GreaterEqualOpTP:
		ret = cmp >= 0
	case EqualOpTp:
		ret = cmp == 0
	case NotEqualOpTP:
		ret = cmp != 0
	}
	return boolValue(ret)
}

func boolValue(b bool) Value {
	if b {
		return intValue(1)
	}
	return intValue(0)
}

// promote returns the type two operands are combined in.
func promote(left, right VarType) VarType {
	if left == DoubleVariableType || right == DoubleVariableType {
		return DoubleVariableType
	}
	if left == StructVariableType || right == StructVariableType {
		return StructVariableType
	}
	return IntVariableType
}
