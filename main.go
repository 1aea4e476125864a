// main.go
package main

import (
	"os"

	"github.com/gewnthar/datasetdoc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
