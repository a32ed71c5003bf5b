package mdp

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const twoStateJSON = `{
  "gamma": 0.5,
  "tran_prob": {
    "0": {"to0": [1.0, 0.0], "to1": [0.0, 1.0]},
    "1": {"stay": [0.0, 1.0]}
  },
  "rewards": {
    "0": {"to0": [0, 0], "to1": [0, 10]},
    "1": {"stay": [0, 0]}
  }
}`

func TestParseKeepsDocumentOrder(t *testing.T) {
	doc := `
gamma: 0.9
tran_prob:
  b: {z: [0, 1, 0], a: [0, 0, 1]}
  c: {}
  a: {only: [1, 0, 0]}
rewards:
  b: {a: [0, 0, 1], z: [0, 2, 0]}
  a: {only: [3, 0, 0]}
`
	m, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []State{"b", "c", "a"}, m.States())
	acts, err := m.Actions("b")
	require.NoError(t, err)
	assert.Equal(t, []Action{"z", "a"}, acts)

	r, err := m.R("b", "z", "c")
	require.NoError(t, err)
	assert.Equal(t, Reward(2), r)

	term, err := m.IsTerminal("c")
	require.NoError(t, err)
	assert.True(t, term)
	assert.Equal(t, 0, m.NumActions(1))
}

func TestParseJSON(t *testing.T) {
	m, err := Parse([]byte(twoStateJSON))
	require.NoError(t, err)

	assert.Equal(t, 0.5, m.Gamma())
	out, err := m.T("0", "to1")
	require.NoError(t, err)
	assert.Equal(t, []Outcome{{State: "0", Probability: 0}, {State: "1", Probability: 1}}, out)

	r, err := m.R("0", "to1", "1")
	require.NoError(t, err)
	assert.Equal(t, Reward(10), r)

	j, err := m.ActionIndex("0", "to1")
	require.NoError(t, err)
	assert.Equal(t, 1, j)
	assert.Equal(t, 10.0, m.RewardAt(0, 1, 1))
	assert.Equal(t, 1.0, m.ProbAt(0, 1, 1))
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	valid := func() Definition {
		return Definition{
			Gamma: 0.9,
			States: []StateDefinition{
				{ID: "0", Actions: []ActionDefinition{{ID: "a", Transitions: []float64{0.5, 0.5}, Rewards: []float64{1, 2}}}},
				{ID: "1"},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Definition)
		field  string
	}{
		{"gamma above one", func(d *Definition) { d.Gamma = 1.5 }, "gamma"},
		{"negative gamma", func(d *Definition) { d.Gamma = -0.1 }, "gamma"},
		{"NaN gamma", func(d *Definition) { d.Gamma = math.NaN() }, "gamma"},
		{"no states", func(d *Definition) { d.States = nil }, "tran_prob"},
		{"duplicate state", func(d *Definition) { d.States[1].ID = "0" }, "tran_prob[0]"},
		{"row sums below one", func(d *Definition) { d.States[0].Actions[0].Transitions = []float64{0.5, 0.4} }, "tran_prob[0][a]"},
		{"row sums above one", func(d *Definition) { d.States[0].Actions[0].Transitions = []float64{0.5, 0.5 + 1e-6} }, "tran_prob[0][a]"},
		{"row sums just past tolerance", func(d *Definition) { d.States[0].Actions[0].Transitions = []float64{0.5, 0.5 + 2e-9} }, "tran_prob[0][a]"},
		{"NaN probability", func(d *Definition) { d.States[0].Actions[0].Transitions = []float64{math.NaN(), 1} }, "tran_prob[0][a]"},
		{"short row", func(d *Definition) { d.States[0].Actions[0].Transitions = []float64{1} }, "tran_prob[0][a]"},
		{"negative probability", func(d *Definition) { d.States[0].Actions[0].Transitions = []float64{1.5, -0.5} }, "tran_prob[0][a]"},
		{"short rewards", func(d *Definition) { d.States[0].Actions[0].Rewards = []float64{1} }, "rewards[0][a]"},
		{"infinite reward", func(d *Definition) { d.States[0].Actions[0].Rewards = []float64{math.Inf(1), 0} }, "rewards[0][a]"},
		{"NaN reward", func(d *Definition) { d.States[0].Actions[0].Rewards = []float64{0, math.NaN()} }, "rewards[0][a]"},
		{"duplicate action", func(d *Definition) {
			d.States[0].Actions = append(d.States[0].Actions, d.States[0].Actions[0])
		}, "tran_prob[0][a]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid()
			tt.mutate(&def)
			m, err := New(def)
			require.Error(t, err)
			assert.Nil(t, m)

			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr), "got %T", err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestNewAcceptsRoundingWithinTolerance(t *testing.T) {
	for _, row := range [][]float64{
		{0.1, 0.2, 0.7},
		{0.5, 0.5 + 5e-10, 0},
		{0.5, 0.5 - 5e-10, 0},
	} {
		_, err := New(Definition{
			Gamma: 1,
			States: []StateDefinition{
				{ID: "0", Actions: []ActionDefinition{{ID: "a", Transitions: row, Rewards: []float64{0, 0, 0}}}},
				{ID: "1"},
				{ID: "2"},
			},
		})
		require.NoError(t, err, "%v", row)
	}
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"not a mapping", `[1, 2]`, ""},
		{"missing gamma", `{"tran_prob": {}, "rewards": {}}`, "gamma"},
		{"missing rewards", `{"gamma": 1, "tran_prob": {"0": {"a": [1]}}}`, "rewards"},
		{"reward entry missing", `{"gamma": 1, "tran_prob": {"0": {"a": [1]}}, "rewards": {"0": {}}}`, "rewards[0][a]"},
		{"orphan reward", `{"gamma": 1, "tran_prob": {"0": {"a": [1]}}, "rewards": {"0": {"a": [0], "b": [0]}}}`, "rewards[0][b]"},
		{"orphan reward state", `{"gamma": 1, "tran_prob": {"0": {"a": [1]}}, "rewards": {"0": {"a": [0]}, "9": {}}}`, "rewards[9]"},
		{"probabilities not numbers", `{"gamma": 1, "tran_prob": {"0": {"a": ["x"]}}, "rewards": {"0": {"a": [0]}}}`, "tran_prob[0][a]"},
		{"duplicate state key", "gamma: 1\ntran_prob:\n  \"0\": {a: [1]}\n  \"0\": {a: [1]}\nrewards:\n  \"0\": {a: [0]}\n", "tran_prob[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "\n  \n", "# nothing here\n", "~"} {
		_, err := Parse([]byte(doc))
		var cerr *ConfigurationError
		require.ErrorAs(t, err, &cerr, "%q", doc)
		assert.Equal(t, "empty document", cerr.Reason)
		assert.Empty(t, cerr.Field)
	}
}

func TestParseFollowsAliases(t *testing.T) {
	m, err := Parse([]byte(`
gamma: 0.5
tran_prob:
  "0": &moves {a: [0.5, 0.5], b: [0, 1]}
  "1": *moves
rewards:
  "0": &paid {a: [1, 1], b: [0, 2]}
  "1": *paid
`))
	require.NoError(t, err)

	acts, err := m.Actions("1")
	require.NoError(t, err)
	assert.Equal(t, []Action{"a", "b"}, acts)

	r, err := m.R("1", "b", "1")
	require.NoError(t, err)
	assert.Equal(t, Reward(2), r)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	var cerr *ConfigurationError
	require.True(t, errors.As(err, &cerr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestQueryErrors(t *testing.T) {
	m, err := Parse([]byte(twoStateJSON))
	require.NoError(t, err)

	_, err = m.Actions("x")
	assert.ErrorIs(t, err, ErrUnknownState)

	_, err = m.T("0", "stay")
	assert.ErrorIs(t, err, ErrUnknownAction)
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "T", qerr.Op)
	assert.Equal(t, State("0"), qerr.State)
	assert.Equal(t, Action("stay"), qerr.Action)

	_, err = m.R("0", "to1", "7")
	assert.ErrorIs(t, err, ErrUnknownState)

	_, err = m.StateIndex("7")
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestQueriesDoNotExposeInternals(t *testing.T) {
	m, err := Parse([]byte(twoStateJSON))
	require.NoError(t, err)

	states := m.States()
	states[0] = "mutated"
	assert.Equal(t, State("0"), m.StateAt(0))

	def := m.Definition()
	def.States[0].Actions[0].Transitions[0] = 42
	assert.Equal(t, 1.0, m.ProbAt(0, 0, 0))
}

func TestDefinitionEncodingRoundTrip(t *testing.T) {
	m, err := Parse([]byte(twoStateJSON))
	require.NoError(t, err)
	def := m.Definition()
	def.States = append(def.States, StateDefinition{ID: "sink", Actions: []ActionDefinition{}})
	for i := range def.States[:2] {
		for j := range def.States[i].Actions {
			a := &def.States[i].Actions[j]
			a.Transitions = append(a.Transitions, 0)
			a.Rewards = append(a.Rewards, 0)
		}
	}

	out, err := yaml.Marshal(def)
	require.NoError(t, err)
	fromYAML, err := Parse(out)
	require.NoError(t, err, string(out))
	assert.Equal(t, def, fromYAML.Definition())

	var buf bytes.Buffer
	require.NoError(t, def.WriteJSON(&buf))
	fromJSON, err := Parse(buf.Bytes())
	require.NoError(t, err, buf.String())
	assert.Equal(t, def, fromJSON.Definition())
}
