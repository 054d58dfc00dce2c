// Command mmusim runs experiments on a simulated memory management unit.
package main

import "github.com/sarchlab/mmusim/mmusim/cmd"

func main() {
	cmd.Execute()
}
