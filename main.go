package main

import (
	"github.com/starshine-sys/keeper/cmd"
	"github.com/starshine-sys/keeper/common/log"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatal(err)
	}
}
