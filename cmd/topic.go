package cmd

import (
	"context"
	"flag"

	"github.com/etnz/stockbook/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	app *App
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `topic [<topic>...]

  Shows documentation for the given topics, "*" for all of them. Without
  topic it lists the available ones.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	doc, err := docs.Topics(f.Args()...)
	if err != nil {
		return c.app.exit(err)
	}
	c.app.printMarkdown(doc)
	return subcommands.ExitSuccess
}
