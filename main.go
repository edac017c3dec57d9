package main

import "github.com/KaramelBytes/fieldscan/cmd"

func main() {
	cmd.Execute()
}
