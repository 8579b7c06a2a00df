package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docnotion/cmd/docnotion/commands"
	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
	"git.home.luguber.info/inful/docnotion/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}
	ctx := kong.Parse(cli,
		kong.Name("docnotion"),
		kong.Description("Mirror a Notion outline into Docusaurus markdown."),
		kong.UsageOnError(),
		kong.Bind(global),
		kong.Vars{"version": version.String()},
	)

	err := ctx.Run(cli)
	os.Exit(errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).Report(err))
}
