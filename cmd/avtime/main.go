// Command avtime resolves partial report times from the command line.
//
// Usage:
//
//	avtime resolve --anchor 2020-02-27T01:05:00Z 270100Z
//	avtime resolve --anchor 2020-02-27T05:00:00Z 2706/2812
//	avtime complete --reference 2020-02-27T01:05:00Z sigmet.json
//	avtime check completed.json
package main

import (
	"fmt"
	"os"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
