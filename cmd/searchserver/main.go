// Command searchserver loads a document corpus into an in-memory TF-IDF
// index and answers queries against it.
package main

import (
	"fmt"
	"os"

	"github.com/Adithya-Monish-Kumar-K/search-server/cmd/searchserver/cmd"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "searchserver:", err)
		os.Exit(apperrors.ExitCode(err))
	}
}
