package main

import (
	"github.com/tradeyard/storefront/cmd"
)

func main() {
	cmd.Start()
}
