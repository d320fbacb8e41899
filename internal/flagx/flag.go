// Package flagx lets several configuration loaders share one command line.
// Each loader picks out only the flags it owns and parses them with its own
// flag.FlagSet.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs returns the subset of args made of the flags named in
// valueFlags (with their values) and boolFlags. Names are given with a
// leading dash ("-a"); "-a" and "--a" match the same flag.
//
// Accepted forms:
//
//	-a value     value flag followed by its value
//	-a=value     value or bool flag with an inline value
//	-v           bool flag; never consumes the next argument
//
// Unknown flags are skipped together with a following non-flag value.
func FilterArgs(args []string, valueFlags []string, boolFlags ...string) []string {
	kinds := make(map[string]bool, len(valueFlags)+len(boolFlags))
	for _, f := range valueFlags {
		kinds[normalize(f)] = true
	}
	for _, f := range boolFlags {
		kinds[normalize(f)] = false
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, inline := strings.Cut(arg, "=")
		takesValue, known := kinds[normalize(name)]
		if !known {
			continue
		}

		filtered = append(filtered, arg)
		if inline || !takesValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

func normalize(name string) string {
	return "-" + strings.TrimLeft(name, "-")
}

// ConfigFile returns the JSON config path given by -c or -config in
// os.Args, or "" when neither is present.
func ConfigFile() string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))

	return path
}
