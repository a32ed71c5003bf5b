package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition>",
	Short: "Check an MDP definition without solving it",
	Long: `Load an MDP definition and report the first problem found: a missing
key, a row of the wrong length, a negative or non-finite entry, or a
transition row that does not sum to 1.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	m, err := mdp.Load(args[0])
	if err != nil {
		return err
	}

	terminal, pairs := 0, 0
	for s := range m.NumStates() {
		if m.NumActions(s) == 0 {
			terminal++
		}
		pairs += m.NumActions(s)
	}
	fmt.Fprintf(sess.out, "%s %s: %d states (%d terminal), %d state-action pairs, gamma %g\n",
		sess.au.Green("ok"), args[0], m.NumStates(), terminal, pairs, m.Gamma())
	return nil
}
