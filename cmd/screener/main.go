package main

import (
	"os"

	"StockScreener/cmd/screener/commands"
)

func main() {
	os.Exit(commands.Execute())
}
