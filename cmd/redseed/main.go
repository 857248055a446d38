// Command redseed seeds a Redmine instance from a concept document.
package main

import (
	"os"

	"github.com/conceptforge/redseed/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
