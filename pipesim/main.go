// Command pipesim runs packet network simulations built from fixed-latency
// pipes and reports how much traffic crossed the core links.
package main

import "github.com/sarchlab/pipesim/pipesim/cmd"

func main() {
	cmd.Execute()
}
