package qrun

import (
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// debugDumper renders the structural form of diagnostics for the error channel.
var debugDumper = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func debugForm(v any) string {
	return strings.TrimRight(debugDumper.Sdump(v), "\n")
}
