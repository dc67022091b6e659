package main

import "github.com/fevtel/evdash-service-go/cmd"

func main() {
	cmd.Execute()
}
