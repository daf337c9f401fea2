package internal

import (
	"fmt"
	"strings"
)

// Value is a runtime value tagged with the type it was computed in.
// int and char values live in Int, double values in Real.
type Value struct {
	TP   VarType
	Int  int
	Real float64
}

// ints are 32 bit signed, chars 8 bit signed.
func intValue(v int) Value {
	return Value{TP: IntVariableType, Int: int(int32(v))}
}

func realValue(v float64) Value {
	return Value{TP: DoubleVariableType, Real: v}
}

func charValue(v int) Value {
	return Value{TP: CharVariableType, Int: int(int8(v))}
}

func zeroValue(tp VarType) Value {
	return Value{TP: tp}
}

func (v Value) AsInt() int {
	if v.TP == DoubleVariableType {
		return int(v.Real)
	}
	return v.Int
}

func (v Value) AsReal() float64 {
	if v.TP == DoubleVariableType {
		return v.Real
	}
	return float64(v.Int)
}

func (v Value) IsTrue() bool {
	if v.TP == DoubleVariableType {
		return v.Real != 0
	}
	return v.Int != 0
}

// Convert returns v converted to tp, struct and void leave v as it is.
func (v Value) Convert(tp VarType) Value {
	switch tp {
	case IntVariableType:
		return intValue(v.AsInt())
	case CharVariableType:
		return charValue(v.AsInt())
	case DoubleVariableType:
		return realValue(v.AsReal())
	}
	return v
}

func (v Value) String() string {
	switch v.TP {
	case DoubleVariableType:
		return fmt.Sprintf("%f", v.Real)
	case CharVariableType:
		return fmt.Sprintf("'%c'", rune(byte(v.Int)))
	}
	return fmt.Sprintf("%d", v.Int)
}

// Register is a named runtime slot. A scalar register holds one value, a vector register
// holds one value per element.
type Register struct {
	Name     string
	Offset   int
	TP       VariableType
	IsVector bool
	Values   []Value
}

func (r *Register) Value() Value {
	return r.Values[0]
}

func (r *Register) element(index int, line int) (*Value, error) {
	if index < 0 || index >= len(r.Values) {
		return nil, fmt.Errorf("%w: index %d out of range of vector %s with %d elements at line %d", ErrRuntime,
			index, r.Name, len(r.Values), line)
	}
	return &r.Values[index], nil
}

func (r *Register) reset() {
	for i := range r.Values {
		r.Values[i] = zeroValue(r.TP.TP)
	}
}

// String renders a char vector up to its first null character.
func (r *Register) String() string {
	var builder strings.Builder
	for _, v := range r.Values {
		if v.Int == 0 {
			break
		}
		builder.WriteByte(byte(v.Int))
	}
	return builder.String()
}

// RegisterStore owns every register created during a run. Registers are never removed and
// every new register takes the next free offsets: one for a scalar, one per element for a vector.
type RegisterStore struct {
	registers  []*Register
	nextOffset int
}

func (store *RegisterStore) alloc(name string, tp VariableType, vector bool, length int) *Register {
	if !vector {
		length = 1
	}
	register := &Register{
		Name:     name,
		Offset:   store.nextOffset,
		TP:       tp,
		IsVector: vector,
		Values:   make([]Value, length),
	}
	register.reset()
	store.nextOffset += length
	store.registers = append(store.registers, register)
	return register
}

func (store *RegisterStore) Registers() []*Register {
	return store.registers
}

// Lookup returns the last register named name.
func (store *RegisterStore) Lookup(name string) *Register {
	for i := len(store.registers) - 1; i >= 0; i-- {
		if store.registers[i].Name == name {
			return store.registers[i]
		}
	}
	return nil
}

func (store *RegisterStore) String() string {
	var builder strings.Builder
	for _, register := range store.registers {
		if !register.IsVector {
			builder.WriteString(fmt.Sprintf("Name: %s = %s at %d\n", register.Name, register.Value(),
				register.Offset))
			continue
		}
		values := make([]string, 0, len(register.Values))
		for _, v := range register.Values {
			values = append(values, v.String())
		}
		builder.WriteString(fmt.Sprintf("Name: %s = [%s] at %d\n", register.Name, strings.Join(values, " "),
			register.Offset))
	}
	return builder.String()
}

// frame maps the names visible in one function activation to their registers.
type frame struct {
	funcName  string
	returnTP  VariableType
	registers map[string]*Register
	// struct instance name -> struct name, vectors of structs included.
	structs  map[string]string
	declared map[*DeclaratorAst]*declaration
	// Loops of this activation currently running.
	loops       int
	returned    bool
	breaking    bool
	returnValue Value
}

// declaration holds the registers a declarator created, reused when the declaration runs
// again with the same vector length.
type declaration struct {
	registers map[string]*Register
	length    int
}

func newFrame(funcName string, returnTP VariableType) *frame {
	return &frame{
		funcName:  funcName,
		returnTP:  returnTP,
		registers: map[string]*Register{},
		structs:   map[string]string{},
		declared:  map[*DeclaratorAst]*declaration{},
	}
}
