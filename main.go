package main

import "github.com/AvaProtocol/txdecode/cmd"

func main() {
	cmd.Execute()
}
