package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

// newJSONEncoder returns the encoder every --json flag shares: two-space
// indent, and titles such as "NickA <3 Mirage & Nuke" printed verbatim.
func newJSONEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc
}

func writeJSON(cmd *cobra.Command, v any) error {
	return newJSONEncoder(cmd.OutOrStdout()).Encode(v)
}
