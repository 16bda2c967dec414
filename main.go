// Package main is the entry point for the MyBlog command-line client.
package main

import (
	"myblog/client/cmd"
)

func main() {
	cmd.Execute()
}
