// Command iv-calculator prices European options and solves for implied
// volatility, from flags, batch files or an HTTP API.
package main

import "os"

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
