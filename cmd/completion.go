package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var datePredictor = predict.Set{"0d", "-1d", "-1w", "-1m", "-1y"}

// Complete answers a shell completion request and exits, it returns
// immediately when the process is not run for completion.
//
// COMP_INSTALL=1 sbk installs the completion in the user's shell.
func (a *App) Complete(name string) {
	a.completion().Complete(name)
}

func (a *App) completion() *complete.Command {
	root := &complete.Command{Sub: map[string]*complete.Command{
		"help":     {},
		"flags":    {},
		"commands": {},
	}}
	for _, r := range a.commands {
		f := flag.NewFlagSet(r.cmd.Name(), flag.ContinueOnError)
		r.cmd.SetFlags(f)

		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		f.VisitAll(func(fl *flag.Flag) { sub.Flags[fl.Name] = predictor(fl) })
		root.Sub[r.cmd.Name()] = sub
	}
	return root
}

func predictor(fl *flag.Flag) complete.Predictor {
	if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch fl.Name {
	case "f":
		return predict.Files("*.csv")
	case "o":
		return predict.Files("*")
	case "d", "from", "to":
		return datePredictor
	default:
		return predict.Something
	}
}
