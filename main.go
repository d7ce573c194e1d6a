package main

import (
	"github.com/vrypan/cacipher/cmd"
)

func main() {
	cmd.Execute()
}
