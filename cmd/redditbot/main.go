package main

import "github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/cli"

func main() {
	cli.Execute()
}
