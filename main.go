package main

import "github.com/jbr/ferritin-sub001/cmd"

func main() {
	cmd.Execute()
}
