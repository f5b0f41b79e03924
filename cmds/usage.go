package cmds

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

func (p *Executor) PrintUsage() {
	printed := make(map[*Command]bool)
	for _, name := range slices.Sorted(maps.Keys(p.commands)) {
		command := p.commands[name]
		if printed[command] {
			continue
		}
		printed[command] = true
		printCommand(name, command, 0)
	}
}

func printCommand(name string, command *Command, indent int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(os.Stderr, "%s%s", pad, name)
	if len(command.Aliases) > 0 {
		fmt.Fprintf(os.Stderr, " (%s)", strings.Join(command.Aliases, ", "))
	}
	fmt.Fprintln(os.Stderr)
	if command.Description != "" {
		for line := range strings.Lines(wordwrap.WrapString(command.Description, 72)) {
			fmt.Fprintf(os.Stderr, "%s  %s", pad, strings.TrimRight(line, "\n"))
			fmt.Fprintln(os.Stderr)
		}
	}
	for _, subname := range slices.Sorted(maps.Keys(command.Subs)) {
		printCommand(subname, command.Subs[subname], indent+1)
	}
}
