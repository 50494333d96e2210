package main

import (
	"os"

	"github.com/securevibes/policyvibes/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
