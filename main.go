// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/pyleus/pyleus-launch/cmd/pyleus-launch"

func main() {
	cmd.Execute()
}
