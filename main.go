package main

import "github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/cmd"

func main() {
	cmd.Execute()
}
