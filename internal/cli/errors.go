package cli

import (
	"fmt"
	"io"

	"github.com/lgc202/pwless-go/pwless"
)

// printError reports err, showing the server's own document for API errors.
func printError(w io.Writer, err error) {
	if ae, ok := pwless.AsAPIError(err); ok {
		fmt.Fprintf(w, "Error: the API answered %d:\n%s\n", ae.StatusCode, ae.Raw)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
