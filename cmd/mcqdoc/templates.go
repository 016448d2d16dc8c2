package main

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// runTemplates prints the capacities the configuration accepts.
func runTemplates(args []string, stdout io.Writer) error {
	var flags cliFlags
	fs := newFlagSet("mcqdoc templates", stdout, &flags)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCAPACITY\tTITLE\t")
	for _, d := range catalog.List() {
		marker := ""
		if d.Capacity == cfg.DefaultCapacity {
			marker = "(default)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", d.ID, d.Capacity, d.Layout["title"], marker)
	}
	return tw.Flush()
}
