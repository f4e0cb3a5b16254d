package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors suggest values for flags by name.
var flagPredictors = map[string]complete.Predictor{
	"i":         predict.Files("*.csv"),
	"o":         predict.Files("*.csv"),
	"d":         predict.Files("*.csv"),
	"tax-rates": predict.Files("*.json"),
	"mode":      predict.Set{"fifo", "tax-optimized"},
	"env-file":  predict.Files("*"),
}

// Completion returns the shell completion of the application, derived
// from the flags of its commands.
func Completion(commands ...subcommands.Command) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictFlags(flag.CommandLine),
	}
	for _, c := range commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: predictFlags(fs)}
	}
	return root
}

func predictFlags(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := flagPredictors[f.Name]; ok {
			flags[f.Name] = p
			return
		}
		flags[f.Name] = predict.Nothing
	})
	return flags
}
