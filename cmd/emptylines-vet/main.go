// Command emptylines-vet runs the empty-lines rule over Go packages:
//
//	emptylines-vet ./...
//	go vet -vettool=$(which emptylines-vet) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"emptylines/internal/goanalysis"
)

func main() {
	singlechecker.Main(goanalysis.Analyzer)
}
