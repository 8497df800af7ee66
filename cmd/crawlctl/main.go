// Command crawlctl is the operator CLI: trigger, pause, resume, and search
// against the same Mongo store the worker process uses, grounded on
// rohmanhakim-docs-crawler's cobra root-command layout.
package main

import "webcrawler/internal/cli"

func main() {
	cli.Execute()
}
