package main

import "github.com/saadjs/nutriplan/cmd/nutriplan"

func main() {
	nutriplan.Execute()
}
