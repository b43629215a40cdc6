package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.PersistentFlags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError prints err as a JSON object when JSON output is on.
func (o *OutputOptions) HandleError(w io.Writer, err error) error {
	if o.JSON && err != nil {
		b, merr := json.Marshal(map[string]string{"error": err.Error()})
		if merr != nil {
			return merr
		}
		_, _ = fmt.Fprintln(w, string(b))
		return nil
	}
	return err
}

// SetOptions collects --set field=value pairs.
type SetOptions struct {
	Pairs []string
}

func AddSetArg(cmd *cobra.Command, so *SetOptions) {
	cmd.Flags().StringArrayVar(&so.Pairs, "set", nil,
		"Field value as field=value; relations take the related id. Repeatable.")
}

func (o *SetOptions) Values() (map[string]string, error) {
	values := make(map[string]string, len(o.Pairs))
	for _, p := range o.Pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, expected field=value", p)
		}
		values[k] = v
	}
	return values, nil
}
