package options

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// OutputOptions selects machine-readable output.
type OutputOptions struct {
	JSON bool
	// Out receives JSON errors. Defaults to color.Output.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError prints err as {"error": "..."} in JSON mode, the same shape
// the episode service uses, and swallows it. Otherwise err is returned.
func (o *OutputOptions) HandleError(err error) error {
	if !o.JSON || err == nil {
		return err
	}
	b, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return merr
	}
	out := o.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintln(out, string(b))
	return nil
}
