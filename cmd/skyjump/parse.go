package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/skyjump/internal/game/color"
	"github.com/cory-johannsen/skyjump/internal/game/command"
)

func parseCmd() *cobra.Command {
	var (
		privileged bool
		maxArgs    int
	)
	cmd := &cobra.Command{
		Use:   "parse <message...>",
		Short: "Show how a chat message is tokenized, matched, and resolved",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			describeMessage(cmd.OutOrStdout(), strings.Join(args, " "), privileged, maxArgs)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&privileged, "privileged", "p", false, "treat the sender as privileged")
	cmd.Flags().IntVar(&maxArgs, "max-args", command.DefaultMaxArguments, "argument slots to show")
	return cmd
}

// describeMessage writes the parsed form of msg and what the built-in alias
// table makes of it.
func describeMessage(w io.Writer, msg string, privileged bool, maxArgs int) {
	c := command.NewParser(maxArgs).Parse(msg)
	fmt.Fprintf(w, "name:     %q\n", c.Name)
	for i, arg := range c.ArgumentsAsStrings() {
		s, ok := arg.Get()
		if !ok {
			fmt.Fprintf(w, "arg %d:    none\n", i)
			continue
		}
		if n, ok := c.NumberArg(i).Get(); ok {
			fmt.Fprintf(w, "arg %d:    %q (number %d)\n", i, s, n)
		} else {
			fmt.Fprintf(w, "arg %d:    %q\n", i, s)
		}
	}

	registry := command.DefaultRegistry()
	id, ok := registry.Resolve(c.Name, privileged)
	if !ok {
		fmt.Fprintln(w, "identity: none")
		if a, found := lookupPrivileged(registry, c.Name); found {
			fmt.Fprintf(w, "          %q needs a privileged sender\n", a.Identity.String())
			fmt.Fprintf(w, "usage:    %s\n", a.Help)
		}
		return
	}
	fmt.Fprintf(w, "identity: %s\n", id)
	if a, ok := registry.Lookup(id); ok && a.Help != "" {
		fmt.Fprintf(w, "usage:    %s\n", a.Help)
	}
	switch id {
	case command.IdentityJump:
		j := command.ResolveJumpCommand(c)
		fmt.Fprintf(w, "jump:     angle %d (lean %+d), power %d\n", j.Angle, j.Lean(), j.Power)
	case command.IdentityNameColor:
		fmt.Fprintf(w, "colors:   %s, any hex, or %s\n", strings.Join(color.Names(), " "), color.RandomKeyword)
	}
}

// lookupPrivileged finds the privileged entry name would select.
func lookupPrivileged(r *command.Registry, name string) (command.Alias, bool) {
	id, ok := r.Resolve(name, true)
	if !ok {
		return command.Alias{}, false
	}
	return r.Lookup(id)
}
