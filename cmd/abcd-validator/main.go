package main

import (
	"os"

	"github.com/itaxotools/abcd-validator/cmd/abcd-validator/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
