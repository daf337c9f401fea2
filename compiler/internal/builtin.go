package internal

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

type builtinParam struct {
	name   string
	class  SymbolClass
	tp     VariableType
	length int
}

type builtinFunc struct {
	name     string
	returnTP VariableType
	params   []builtinParam
}

// Functions every program can call without declaring them.
var builtinFuncs = []builtinFunc{
	{name: "put_s", returnTP: VoidType, params: []builtinParam{
		{name: "s", class: FunctionArgumentVectorClass, tp: CharType, length: 50},
	}},
	{name: "get_s", returnTP: VoidType, params: []builtinParam{
		{name: "s", class: FunctionArgumentVectorClass, tp: CharType, length: 50},
	}},
	{name: "put_i", returnTP: VoidType, params: []builtinParam{{name: "i", class: FunctionArgumentClass, tp: IntType}}},
	{name: "get_i", returnTP: IntType},
	{name: "put_d", returnTP: VoidType, params: []builtinParam{{name: "d", class: FunctionArgumentClass, tp: DoubleType}}},
	{name: "get_d", returnTP: DoubleType},
	{name: "put_c", returnTP: VoidType, params: []builtinParam{{name: "c", class: FunctionArgumentClass, tp: CharType}}},
	{name: "get_c", returnTP: CharType},
	{name: "seconds", returnTP: DoubleType},
}

// put_* print their argument on a line of its own, get_* read from the configured input.
func (interpreter *Interpreter) callBuiltin(call *CallAst, f *frame) (Value, error) {
	interpreterT().Debugf("%s %s", LoadFunctionOpcode, call.FuncName)
	out := interpreter.opts.out()
	switch call.FuncName {
	case "put_i":
		value, err := interpreter.evalExpression(call.Params[0], IntVariableType, f)
		if err != nil {
			return Value{}, err
		}
		fmt.Fprintf(out, "%d\n", value.Int)
	case "put_d":
		value, err := interpreter.evalExpression(call.Params[0], DoubleVariableType, f)
		if err != nil {
			return Value{}, err
		}
		fmt.Fprintf(out, "%f\n", value.Real)
	case "put_c":
		value, err := interpreter.evalExpression(call.Params[0], CharVariableType, f)
		if err != nil {
			return Value{}, err
		}
		fmt.Fprintf(out, "%c\n", rune(byte(value.Int)))
	case "put_s":
		s, err := interpreter.stringArgument(call, f)
		if err != nil {
			return Value{}, err
		}
		fmt.Fprintln(out, s)
	case "get_i":
		line, err := interpreter.readLine(call)
		if err != nil {
			return Value{}, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an integer, read by %s at line %d", ErrRuntime, line,
				call.FuncName, call.Line)
		}
		return intValue(n), nil
	case "get_d":
		line, err := interpreter.readLine(call)
		if err != nil {
			return Value{}, err
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a double, read by %s at line %d", ErrRuntime, line,
				call.FuncName, call.Line)
		}
		return realValue(d), nil
	case "get_c":
		c, err := interpreter.reader().ReadByte()
		if err != nil {
			return Value{}, noInputError(call)
		}
		return charValue(int(c)), nil
	case "get_s":
		register, err := interpreter.vectorArgument(call, f)
		if err != nil {
			return Value{}, err
		}
		line, err := interpreter.readLine(call)
		if err != nil {
			return Value{}, err
		}
		return Value{}, interpreter.fillString(register, line, call.Line)
	case "seconds":
		return realValue(time.Since(interpreter.start).Seconds()), nil
	}
	return Value{}, nil
}

func (interpreter *Interpreter) reader() *bufio.Reader {
	if interpreter.input == nil {
		interpreter.input = bufio.NewReader(interpreter.opts.in())
	}
	return interpreter.input
}

// readLine returns the next input line without its line break.
func (interpreter *Interpreter) readLine(call *CallAst) (string, error) {
	line, err := interpreter.reader().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", noInputError(call)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func noInputError(call *CallAst) error {
	return fmt.Errorf("%w: no input left for %s at line %d", ErrRuntime, call.FuncName, call.Line)
}

// stringArgument returns the string constant or the char vector passed to call.
func (interpreter *Interpreter) stringArgument(call *CallAst, f *frame) (string, error) {
	if term := plainTerm(call.Params[0]); term != nil && term.Type == StringConstantTermType {
		return term.Value.(string), nil
	}
	register, err := interpreter.vectorArgument(call, f)
	if err != nil {
		return "", err
	}
	return register.String(), nil
}

func (interpreter *Interpreter) vectorArgument(call *CallAst, f *frame) (*Register, error) {
	if term := plainTerm(call.Params[0]); term != nil && isVariableTerm(term) {
		loc, err := interpreter.locate(term.Value.(*VariableAst), f)
		if err != nil {
			return nil, err
		}
		if loc.whole {
			return loc.register, nil
		}
	}
	return nil, fmt.Errorf("%w: argument of %s is not a vector at line %d", ErrRuntime, call.FuncName, call.Line)
}
