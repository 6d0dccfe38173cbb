package main

import (
	"github.com/fatih/color"
)

// palette styles the preset tool's terminal output: failures red, successes
// green, pending or dry-run notes yellow and preset IDs cyan.
type palette struct {
	failure *color.Color
	success *color.Color
	pending *color.Color
	preset  *color.Color
}

// newPalette builds the styles. noColor turns escape codes off for every
// fatih/color writer in the process.
func newPalette(noColor bool) *palette {
	color.NoColor = noColor

	return &palette{
		failure: color.New(color.FgRed),
		success: color.New(color.FgGreen),
		pending: color.New(color.FgYellow),
		preset:  color.New(color.FgCyan, color.Bold),
	}
}

func (p *palette) Failure(label string) string { return p.failure.Sprint(label) }

func (p *palette) Success(label string) string { return p.success.Sprint(label) }

func (p *palette) DryRun() string { return p.pending.Sprint("[dry run]") }

func (p *palette) Preset(id string) string { return p.preset.Sprint(id) }

// Change is the headline of one merge result, e.g. "+ added coupe_track".
func (p *palette) Change(id string, added bool) string {
	if added {
		return p.success.Sprint("+ added") + " " + p.Preset(id)
	}

	return p.pending.Sprint("~ updated") + " " + p.Preset(id)
}
