package internal

import (
	"fmt"
	"strings"

	"github.com/sanity-io/litter"
)

var astDumper = litter.Options{
	StripPackageNames: true,
	HidePrivateFields: true,
	HideZeroValues:    true,
}

// DumpProgram renders the statement tree of program.
func DumpProgram(program *Program) string {
	return astDumper.Sdump(program)
}

// DumpTokens lists tokens one per line with their source line.
func DumpTokens(tokens []*Token) string {
	var builder strings.Builder
	for _, token := range tokens {
		builder.WriteString(fmt.Sprintf("line %d: %s\n", token.line, token))
	}
	return builder.String()
}
