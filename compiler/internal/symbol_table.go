package internal

import (
	"fmt"
	"strings"
)

type SymbolClass int

const (
	FunctionClass SymbolClass = iota
	VariableClass
	VectorClass
	FunctionArgumentClass
	StructFieldClass
	StructFieldVectorClass
	FunctionArgumentVectorClass
)

var symbolClassNames = []string{
	"FUNCTION", "VARIABLE", "VECTOR", "FUNCTION ARGUMENT", "STRUCTURE FIELD", "STRUCTURE FIELD VECTOR",
	"FUNCTION ARGUMENT VECTOR",
}

func (c SymbolClass) String() string {
	return symbolClassNames[c]
}

func (c SymbolClass) IsVector() bool {
	return c == VectorClass || c == StructFieldVectorClass || c == FunctionArgumentVectorClass
}

// Symbols declared before any user code, their line is predefinedLine.
const predefinedLine = -1

type Symbol struct {
	Name  string
	Class SymbolClass
	// For functions, this is the return type.
	Type  VariableType
	Depth int
	Line  int
	// Token count between the brackets of a vector declaration.
	Size int
	// Element count of a vector, when it's known.
	Length int
	// Arguments of a function.
	Args []*Symbol

	funcAst *FuncDeclareAst
}

func (sym *Symbol) IsBuiltin() bool {
	return sym.Line == predefinedLine
}

type SymbolTable struct {
	// All symbols in declaration order.
	symbols       []*Symbol
	symbolsByName map[string][]*Symbol
	// struct name -> fields.
	structs map[string][]*Symbol
	// scopes[depth] holds the names visible for duplicate checks at depth.
	scopes []map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	table := &SymbolTable{
		symbolsByName: map[string][]*Symbol{},
		structs:       map[string][]*Symbol{},
	}
	table.initBuiltinFuncs()
	return table
}

func (table *SymbolTable) initBuiltinFuncs() {
	for _, fn := range builtinFuncs {
		fnSymbol := &Symbol{Name: fn.name, Class: FunctionClass, Type: fn.returnTP, Line: predefinedLine}
		for _, param := range fn.params {
			fnSymbol.Args = append(fnSymbol.Args, &Symbol{
				Name:   param.name,
				Class:  param.class,
				Type:   param.tp,
				Depth:  1,
				Line:   predefinedLine,
				Length: param.length,
			})
		}
		table.symbols = append(table.symbols, fnSymbol)
		table.symbolsByName[fn.name] = append(table.symbolsByName[fn.name], fnSymbol)
	}
}

// addSymbol registers sym. Registering at depth d forgets every name declared deeper than d,
// so the locals of a function never collide with the locals of the next one while sibling
// blocks of the same function share their names.
func (table *SymbolTable) addSymbol(sym *Symbol) error {
	for len(table.scopes) <= sym.Depth {
		table.scopes = append(table.scopes, map[string]*Symbol{})
	}
	for d := sym.Depth + 1; d < len(table.scopes); d++ {
		table.scopes[d] = map[string]*Symbol{}
	}
	if _, ok := table.scopes[sym.Depth][sym.Name]; ok {
		return fmt.Errorf("%w: Error, %s already present in this scope: line %d", ErrDuplicateSymbol, sym.Name, sym.Line)
	}
	table.scopes[sym.Depth][sym.Name] = sym
	table.symbols = append(table.symbols, sym)
	table.symbolsByName[sym.Name] = append(table.symbolsByName[sym.Name], sym)
	coreT().Debugf("symbol table: add %s %s of type %s at depth %d, line %d", sym.Class, sym.Name, sym.Type,
		sym.Depth, sym.Line)
	return nil
}

// forgetDeeperThan drops the names declared deeper than depth from the duplicate checks.
func (table *SymbolTable) forgetDeeperThan(depth int) {
	for d := depth + 1; d < len(table.scopes); d++ {
		table.scopes[d] = map[string]*Symbol{}
	}
}

// Build registers every declaration of program, then checks that every identifier in
// tokens refers to a declared name.
func (table *SymbolTable) Build(program *Program, tokens []*Token) error {
	err := table.buildStatements(program.Statements, 0)
	if err != nil {
		return err
	}
	return table.checkUndeclared(tokens)
}

func (table *SymbolTable) buildStatements(stms []*StatementAst, depth int) error {
	for _, stm := range stms {
		err := table.buildStatement(stm, depth)
		if err != nil {
			return err
		}
	}
	return nil
}

func (table *SymbolTable) buildStatement(stm *StatementAst, depth int) error {
	if stm == nil {
		return nil
	}
	switch stm.StatementTP {
	case VariableDeclareStatementTP:
		return table.buildVarDeclare(stm.Statement.(*VarDeclareAst), depth)
	case StructDeclareStatementTP:
		return table.buildStructDeclare(stm.Statement.(*StructDeclareAst), depth)
	case FuncDeclareStatementTP:
		return table.buildFuncDeclare(stm.Statement.(*FuncDeclareAst), depth)
	case BlockStatementTP:
		return table.buildStatements(stm.Statement.(*BlockAst).Statements, depth+1)
	case IfStatementTP:
		ifStm := stm.Statement.(*IfStatementAst)
		err := table.buildStatement(ifStm.IfBody, depth)
		if err != nil {
			return err
		}
		return table.buildStatement(ifStm.ElseBody, depth)
	case WhileStatementTP:
		return table.buildStatement(stm.Statement.(*WhileStatementAst).Body, depth)
	case ForStatementTP:
		forStm := stm.Statement.(*ForStatementAst)
		err := table.buildStatement(forStm.Init, depth)
		if err != nil {
			return err
		}
		return table.buildStatement(forStm.Body, depth)
	}
	return nil
}

func (table *SymbolTable) checkStructType(tp VariableType, line int) error {
	if tp.TP != StructVariableType {
		return nil
	}
	if _, ok := table.structs[tp.Name]; !ok {
		return fmt.Errorf("%w: struct %s is not declared in the current scope: line %d", ErrUndeclaredSymbol, tp.Name,
			line)
	}
	return nil
}

func (table *SymbolTable) buildVarDeclare(ast *VarDeclareAst, depth int) error {
	for _, declarator := range ast.Declarators {
		err := table.checkStructType(ast.VarType, declarator.Line)
		if err != nil {
			return err
		}
		err = table.addSymbol(declaratorSymbol(declarator, ast.VarType, depth, VariableClass, VectorClass))
		if err != nil {
			return err
		}
	}
	return nil
}

func declaratorSymbol(declarator *DeclaratorAst, tp VariableType, depth int, scalar, vector SymbolClass) *Symbol {
	sym := &Symbol{
		Name:   declarator.Name,
		Class:  scalar,
		Type:   tp,
		Depth:  depth,
		Line:   declarator.Line,
		Size:   declarator.Size,
		Length: declarator.Length,
	}
	if declarator.IsVector {
		sym.Class = vector
	}
	return sym
}

// Fields live one level deeper than the struct and are only checked against each other.
func (table *SymbolTable) buildStructDeclare(ast *StructDeclareAst, depth int) error {
	if _, ok := table.structs[ast.Name]; ok {
		return fmt.Errorf("%w: Error, struct %s already present in this scope: line %d", ErrDuplicateSymbol, ast.Name,
			ast.Line)
	}
	table.forgetDeeperThan(depth)
	var fields []*Symbol
	for _, field := range ast.Fields {
		for _, declarator := range field.Declarators {
			err := table.checkStructType(field.VarType, declarator.Line)
			if err != nil {
				return err
			}
			sym := declaratorSymbol(declarator, field.VarType, depth+1, StructFieldClass, StructFieldVectorClass)
			err = table.addSymbol(sym)
			if err != nil {
				return err
			}
			fields = append(fields, sym)
		}
	}
	table.structs[ast.Name] = fields
	table.forgetDeeperThan(depth)
	structTP := VariableType{TP: StructVariableType, Name: ast.Name}
	for _, instance := range ast.Instances {
		err := table.addSymbol(declaratorSymbol(instance, structTP, depth, VariableClass, VectorClass))
		if err != nil {
			return err
		}
	}
	return nil
}

// Arguments share the depth of the function body.
func (table *SymbolTable) buildFuncDeclare(ast *FuncDeclareAst, depth int) error {
	err := table.checkStructType(ast.ReturnTP, ast.Line)
	if err != nil {
		return err
	}
	fnSymbol := &Symbol{
		Name:    ast.FuncName,
		Class:   FunctionClass,
		Type:    ast.ReturnTP,
		Depth:   depth,
		Line:    ast.Line,
		funcAst: ast,
	}
	err = table.addSymbol(fnSymbol)
	if err != nil {
		return err
	}
	for _, param := range ast.Params {
		err = table.checkStructType(param.ParamTP, param.Line)
		if err != nil {
			return err
		}
		argSymbol := &Symbol{
			Name:   param.ParamName,
			Class:  FunctionArgumentClass,
			Type:   param.ParamTP,
			Depth:  depth + 1,
			Line:   param.Line,
			Length: param.Size,
		}
		if param.IsVector {
			argSymbol.Class = FunctionArgumentVectorClass
			if param.Size > 0 {
				argSymbol.Size = 1
			}
		}
		err = table.addSymbol(argSymbol)
		if err != nil {
			return err
		}
		fnSymbol.Args = append(fnSymbol.Args, argSymbol)
	}
	return table.buildStatements(ast.Body.Statements, depth+1)
}

// checkUndeclared requires every identifier not following struct to name a symbol.
func (table *SymbolTable) checkUndeclared(tokens []*Token) error {
	for i, token := range tokens {
		if token.tp != IdentifierTP {
			continue
		}
		if i > 0 && tokens[i-1].tp == StructTP {
			continue
		}
		if len(table.symbolsByName[token.content]) == 0 {
			return fmt.Errorf("%w: %s is not declared in the current scope: line %d", ErrUndeclaredSymbol,
				token.content, token.line)
		}
	}
	return nil
}

func (table *SymbolTable) Symbols() []*Symbol {
	return table.symbols
}

func (table *SymbolTable) Lookup(name string) []*Symbol {
	return table.symbolsByName[name]
}

// Resolve returns the symbol name refers to at line: the last one registered at or before
// line, or the first one when all declarations come later.
func (table *SymbolTable) Resolve(name string, line int) *Symbol {
	symbols := table.symbolsByName[name]
	if len(symbols) == 0 {
		return nil
	}
	var ret *Symbol
	for _, sym := range symbols {
		if sym.Line <= line {
			ret = sym
		}
	}
	if ret == nil {
		return symbols[0]
	}
	return ret
}

// Function returns the last function named name.
func (table *SymbolTable) Function(name string) *Symbol {
	symbols := table.symbolsByName[name]
	for i := len(symbols) - 1; i >= 0; i-- {
		if symbols[i].Class == FunctionClass {
			return symbols[i]
		}
	}
	return nil
}

func (table *SymbolTable) StructFields(name string) []*Symbol {
	return table.structs[name]
}

// StructField returns the field named field of struct structName.
func (table *SymbolTable) StructField(structName, field string) *Symbol {
	for _, sym := range table.structs[structName] {
		if sym.Name == field {
			return sym
		}
	}
	return nil
}

func (table *SymbolTable) String() string {
	var builder strings.Builder
	builder.WriteString("\tSymbol Table:\n\n")
	for _, sym := range table.symbols {
		builder.WriteString(strings.Repeat("-", 80) + "\n")
		builder.WriteString(fmt.Sprintf("Name:%s - Class:%s - ", sym.Name, sym.Class))
		if sym.Type.TP == StructVariableType {
			builder.WriteString(fmt.Sprintf("Struct name: %s - ", sym.Type.Name))
		}
		builder.WriteString(fmt.Sprintf("Type:%s - Depth:%d - Line:%d", sym.Type, sym.Depth, sym.Line))
		if sym.Class == FunctionClass {
			builder.WriteString(fmt.Sprintf(" - Nr Args:%d", len(sym.Args)))
			if len(sym.Args) > 0 {
				builder.WriteString("\n\t")
				for i, arg := range sym.Args {
					builder.WriteString(fmt.Sprintf("arg[%d] = %s; ", i, arg.Name))
				}
			}
		}
		if sym.Class.IsVector() {
			builder.WriteString(fmt.Sprintf(" - Size:%d", sym.Size))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}
