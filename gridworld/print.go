package gridworld

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"

	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

var arrows = map[mdp.Action]string{
	"left":  "←",
	"right": "→",
	"up":    "↑",
	"down":  "↓",
}

// PrintValues draws v, indexed by cell number, as a grid.
func (w StochasticWindyGridWorld) PrintValues(out io.Writer, au aurora.Aurora, v []float64) {
	for r := 0; r < w.Rows; r++ {
		for c := 0; c < w.Cols; c++ {
			s := w.index(r, c)
			cell := format2x2(v[s])
			if w.IsTerminal(s) {
				fmt.Fprint(out, au.Green(cell))
			} else {
				fmt.Fprint(out, au.Blue(cell))
			}
			fmt.Fprint(out, au.White("|"))
		}
		fmt.Fprintln(out)
	}
}

// PrintPolicy draws one arrow per cell for the chosen action.
func (w StochasticWindyGridWorld) PrintPolicy(out io.Writer, au aurora.Aurora, actions map[mdp.State]mdp.Action) {
	for r := 0; r < w.Rows; r++ {
		for c := 0; c < w.Cols; c++ {
			s := w.index(r, c)
			if w.IsTerminal(s) {
				fmt.Fprint(out, au.Green(fmt.Sprintf("%3s ", "■")))
			} else {
				fmt.Fprint(out, au.Yellow(fmt.Sprintf("%3s ", arrows[actions[w.State(r, c)]])))
			}
			fmt.Fprint(out, au.White("|"))
		}
		fmt.Fprintln(out)
	}
}

func format2x2(x float64) string {
	if x < 0 {
		return " -" + fmt.Sprintf("%05.2f", -x)
	}
	return fmt.Sprintf(" %05.2f", x)
}
