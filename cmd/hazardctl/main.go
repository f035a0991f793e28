// Command hazardctl runs the hazard engine offline over local payload files.
//
// Usage:
//
//	hazardctl report --profile=attendance --file=data/mock/attendance.csv
//	hazardctl profiles
//	hazardctl validate --dir=data/mock
//	hazardctl archive --path=archive.db stats
package main

import (
	"fmt"
	"io"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/alecthomas/kong"
)

type env struct {
	out io.Writer
}

type cli struct {
	TZ string `name:"tz" default:"Europe/Paris" help:"IANA timezone used to interpret local timestamps."`

	Report   reportCmd   `cmd:"" help:"Build a hazard report from a CSV or forecast JSON file."`
	Profiles profilesCmd `cmd:"" help:"List the built-in source profiles."`
	Validate validateCmd `cmd:"" help:"Check generated CSV fixtures against the engine invariants."`
	Archive  archiveCmd  `cmd:"" help:"Inspect the payload archive."`
}

func (c *cli) location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.TZ, err)
	}
	return loc, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "hazardctl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("hazardctl"),
		kong.Description("Offline beach-hazard report tool."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&c, &env{out: stdout})
}
