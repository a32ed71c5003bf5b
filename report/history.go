// Package report renders solver output: convergence histories as text logs
// and HTML charts, and value/policy tables for the terminal.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/CodeStranger-Fred/dynaprog/dp"
	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

// WriteHistoryLog writes every step-th snapshot of history, starting with the
// first, one JSON object per line keyed by state in canonical order.
func WriteHistoryLog(w io.Writer, m *mdp.MDP, history []dp.ValueTable, step int) error {
	if step < 1 {
		return fmt.Errorf("report: history step must be positive, got %d", step)
	}
	bw := bufio.NewWriter(w)
	for i := 0; i < len(history); i += step {
		if err := writeSnapshot(bw, m, history[i]); err != nil {
			return fmt.Errorf("report: snapshot %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func writeSnapshot(w *bufio.Writer, m *mdp.MDP, v dp.ValueTable) error {
	w.WriteByte('{')
	for s, val := range v {
		if s > 0 {
			w.WriteString(", ")
		}
		key, _ := json.Marshal(string(m.StateAt(s)))
		num, err := json.Marshal(val)
		if err != nil {
			return err
		}
		w.Write(key)
		w.WriteString(": ")
		w.Write(num)
	}
	w.WriteString("}\n")
	return nil
}
