// Package main is the entry point for resp-bench.
package main

func main() {
	Execute()
}
