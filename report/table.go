package report

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"

	"github.com/CodeStranger-Fred/dynaprog/dp"
	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

// PrintValues prints v(s) one state per line.
func PrintValues(out io.Writer, au aurora.Aurora, m *mdp.MDP, v dp.ValueTable) {
	for s, val := range v {
		fmt.Fprintf(out, "%s %s\n",
			au.Blue(fmt.Sprintf("%-12s", m.StateAt(s))),
			au.Bold(fmt.Sprintf("%12.6f", val)))
	}
}

// PrintPolicy prints the action distribution of every state, highlighting
// the most probable action. Terminal states are marked as such.
func PrintPolicy(out io.Writer, au aurora.Aurora, m *mdp.MDP, pi dp.PolicyTable) {
	for s, row := range pi {
		fmt.Fprint(out, au.Blue(fmt.Sprintf("%-12s", m.StateAt(s))))
		if len(row) == 0 {
			fmt.Fprintln(out, au.Faint(" terminal"))
			continue
		}
		best := pi.Best(s)
		for a, p := range row {
			cell := fmt.Sprintf(" %s=%.3g", m.ActionAt(s, a), p)
			if a == best {
				fmt.Fprint(out, au.Green(cell))
			} else {
				fmt.Fprint(out, au.White(cell))
			}
		}
		fmt.Fprintln(out)
	}
}
