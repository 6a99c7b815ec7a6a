// Command pulsar ranks the pages of link networks with parallel PageRank.
package main

import "github.com/papapumpkin/pulsar/cmd"

func main() {
	cmd.Execute()
}
