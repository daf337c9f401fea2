package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xiaobogaga/minic/compiler/internal"
)

var opts = &internal.Options{}

var rootCmd = &cobra.Command{
	Use:   "minic <source-file> [-DEBUG] [-NoWarnings] [-Code]",
	Short: "minic checks a minic program and optionally runs it",
	Long: `minic tokenizes, parses and checks a minic source file: declarations against
the table of symbols, assignments and calls against their types. With -Code the
checked program is executed.`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		err := setupTracing(opts.Debug)
		if err != nil {
			return err
		}
		gtrace.CommandTracer.Infof("compiling %s", args[0])
		return internal.CompileFile(args[0], opts)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVar(&opts.Debug, "debug", false, "trace tokens, symbols, type decisions and executed opcodes")
	flags.BoolVar(&opts.NoWarnings, "no-warnings", false, "do not print implicit conversion warnings")
	flags.BoolVar(&opts.Code, "code", false, "run the program once it is checked")
	flags.SetNormalizeFunc(normalizeFlagName)
}

// legacyFlags are the single dash spellings the tool has always accepted.
var legacyFlags = map[string]string{
	"-DEBUG":      "--debug",
	"-NoWarnings": "--no-warnings",
	"-Code":       "--code",
}

// normalizeArgs rewrites the legacy flags, pflag would read them as shorthand groups.
func normalizeArgs(args []string) []string {
	ret := make([]string, 0, len(args))
	for _, arg := range args {
		if flag, ok := legacyFlags[arg]; ok {
			arg = flag
		}
		ret = append(ret, arg)
	}
	return ret
}

// normalizeFlagName accepts --NoWarnings, --no_warnings and friends for --no-warnings.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ToLower(strings.ReplaceAll(name, "_", "-"))
	if name == "nowarnings" {
		name = "no-warnings"
	}
	return pflag.NormalizedName(name)
}

// setupTracing sends every tracer to standard output, at debug level when debug is set.
func setupTracing(debug bool) error {
	err := gtrace.CreateTracers(gologadapter.GetAdapter())
	if err != nil {
		return err
	}
	level := tracing.LevelError
	if debug {
		level = tracing.LevelDebug
	}
	for _, t := range []tracing.Trace{gtrace.SyntaxTracer, gtrace.CoreTracer, gtrace.InterpreterTracer,
		gtrace.CommandTracer} {
		t.SetOutput(os.Stdout)
	}
	internal.SetTraceLevel(level)
	return nil
}

func main() {
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	err := rootCmd.Execute()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
