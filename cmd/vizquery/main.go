// vizquery is a command-line interface for asking natural-language
// questions about a SQL database, answered with LLM-generated queries
// and charts.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
