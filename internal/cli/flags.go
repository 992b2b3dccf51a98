package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// fabricTasks maps Fabric task names to their deployr commands.
var fabricTasks = map[string]string{
	"pre_deploy": "pre-deploy",
	"deploy":     "deploy",
	"rollback":   "rollback",
}

// ExpandFabricArgs rewrites Fabric-style task arguments so old muscle
// memory keeps working: "rollback:3" becomes "rollback 3" and
// "rollback:revision=abc" becomes "rollback abc".
// Only the command position is rewritten; flag values are left alone.
func ExpandFabricArgs(args []string) []string {
	return expandFabricArgs(rootCmd.PersistentFlags(), args)
}

func expandFabricArgs(flags *pflag.FlagSet, args []string) []string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args
		}
		if strings.HasPrefix(arg, "-") {
			if flagTakesValue(flags, arg) {
				i++
			}
			continue
		}

		// First positional argument is the command.
		task, param, ok := strings.Cut(arg, ":")
		command, known := fabricTasks[task]
		if !ok || !known {
			return args
		}
		param = strings.TrimPrefix(param, "revision=")

		out := make([]string, 0, len(args)+1)
		out = append(out, args[:i]...)
		out = append(out, command)
		if param != "" {
			out = append(out, param)
		}
		return append(out, args[i+1:]...)
	}
	return args
}

// flagTakesValue reports whether arg is a flag whose value is the next
// argument, e.g. "--server" or "-s" but not "--server=prod" or "-v".
func flagTakesValue(flags *pflag.FlagSet, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}

	var f *pflag.Flag
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		f = flags.Lookup(name)
	} else {
		// Last letter of a shorthand cluster such as -vs takes the value.
		f = flags.ShorthandLookup(arg[len(arg)-1:])
	}
	return f != nil && f.NoOptDefVal == ""
}
