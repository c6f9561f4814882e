package main

import "github.com/BuzzLyutic/kanban-board/internal/cli"

func main() {
	cli.Execute()
}
