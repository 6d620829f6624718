// Command cachesim replays memory traces on a two-core MESI cache hierarchy.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/cachesim/cmd"
)

func main() {
	atexit.Exit(cmd.Execute())
}
