// Command mustache is a small front end for the mustache package: it
// renders a template against a JSON or YAML data file, or lints a
// template for parse errors without rendering it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
