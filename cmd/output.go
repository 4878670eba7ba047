//go:build !p256_noder && !p256_noprehash

package cmd

import (
	"fmt"

	"github.com/urfave/cli/v3"
)

// emit prints v as JSON when the output format is json, and text otherwise.
func emit(cmd *cli.Command, app *appContext, v any, text string) error {
	w := outWriter(cmd)
	if app.jsonOutput() {
		out, err := app.formatter.FormatJSON(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, out)
		return err
	}
	_, err := fmt.Fprint(w, text)
	return err
}
