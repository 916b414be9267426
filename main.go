package main

import (
	"github.com/farmstand/farmstand/cmd"
)

func main() {
	cmd.Start()
}
