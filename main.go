package main

import "github.com/frahmantamala/expense-policy/cmd"

func main() {
	cmd.Execute()
}
