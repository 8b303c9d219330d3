// fishem - Redfish and Swordfish API emulator
package main

import "github.com/getmockd/fishem/pkg/cli"

func main() {
	cli.Execute()
}
