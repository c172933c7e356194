/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package main

import "stakeengine/cmd"

func main() {
	cmd.Execute()
}
