package main

import "github.com/flowi-ledger/internal/cli"

func main() {
	cli.Execute()
}
