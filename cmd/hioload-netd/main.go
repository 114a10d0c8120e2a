// Command hioload-netd runs the packet transport loop with UDP as the
// default transport and an optional WebSocket relay for browser peers.
// Author: momentics <momentics@gmail.com>
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
