package main

import (
	"fmt"
	"strings"
)

// Run executes the profiles command.
func (c *ProfilesCmd) Run(deps *Dependencies) error {
	if len(deps.Profiles) == 0 {
		fmt.Fprintln(deps.Stdout, "No site profiles found. Use --profiles to load a YAML file.")
		return nil
	}
	for _, p := range deps.Profiles {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", p.Name, strings.Join(p.SearchURLs, "  "))
	}
	return nil
}
