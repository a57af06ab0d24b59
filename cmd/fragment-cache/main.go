// Command fragment-cache administers the HTML fragment cache and serves a
// small demo application on top of it.
package main

import (
	"context"
	"os"
)

func main() {
	a := &app{}
	cmd := newRootCmd(a)

	err := cmd.Execute()
	if cerr := a.close(context.Background()); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		os.Exit(1)
	}
}
