package mdp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Definition is the structured input New builds a model from. Transitions
// and Rewards of every action are aligned to the order of States.
//
// In document form (YAML, or JSON which YAML accepts) it reads:
//
//	gamma: 0.9
//	tran_prob:
//	  "0": {stay: [1, 0], go: [0, 1]}
//	  "1": {}
//	rewards:
//	  "0": {stay: [0, 0], go: [0, 10]}
//
// Key order in tran_prob fixes the canonical state and action order. A state
// mapped to {} has no actions and is terminal; it may be omitted from rewards.
type Definition struct {
	Gamma  float64
	States []StateDefinition
}

type StateDefinition struct {
	ID      State
	Actions []ActionDefinition
}

type ActionDefinition struct {
	ID          Action
	Transitions []float64
	Rewards     []float64
}

// Load reads and parses the definition document at path.
func Load(path string) (*MDP, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Reason: "cannot read definition", Err: err}
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON definition document and builds the model.
func Parse(data []byte) (*MDP, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigurationError{Reason: "malformed document", Err: err}
	}
	if len(doc.Content) == 0 || doc.Content[0].ShortTag() == "!!null" {
		return nil, &ConfigurationError{Reason: "empty document"}
	}

	var def Definition
	if err := doc.Decode(&def); err != nil {
		var cerr *ConfigurationError
		if errors.As(err, &cerr) {
			return nil, cerr
		}
		return nil, &ConfigurationError{Reason: "malformed document", Err: err}
	}
	return New(def)
}

// UnmarshalYAML walks the document node by node so mapping order survives.
func (d *Definition) UnmarshalYAML(value *yaml.Node) error {
	value = resolve(value)
	if value.Kind != yaml.MappingNode {
		return configErrorf("", "document must be a mapping")
	}
	var tran, rew *yaml.Node
	haveGamma := false
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := resolve(value.Content[i]), resolve(value.Content[i+1])
		switch k.Value {
		case "gamma":
			if err := v.Decode(&d.Gamma); err != nil {
				return &ConfigurationError{Field: "gamma", Reason: "not a number", Err: err}
			}
			haveGamma = true
		case "tran_prob":
			tran = v
		case "rewards":
			rew = v
		}
	}
	switch {
	case !haveGamma:
		return configErrorf("gamma", "missing")
	case tran == nil:
		return configErrorf("tran_prob", "missing")
	case rew == nil:
		return configErrorf("rewards", "missing")
	case tran.Kind != yaml.MappingNode:
		return configErrorf("tran_prob", "expected a mapping of states")
	}

	var rewards map[State]map[Action][]float64
	if err := rew.Decode(&rewards); err != nil {
		return &ConfigurationError{Field: "rewards", Reason: "expected state -> action -> list of rewards", Err: err}
	}

	d.States = make([]StateDefinition, 0, len(tran.Content)/2)
	seen := make(map[State]bool, len(tran.Content)/2)
	for i := 0; i+1 < len(tran.Content); i += 2 {
		s := State(resolve(tran.Content[i]).Value)
		if seen[s] {
			return configErrorf("tran_prob["+string(s)+"]", "duplicate state")
		}
		seen[s] = true
		actions := resolve(tran.Content[i+1])
		if actions.Kind != yaml.MappingNode {
			return configErrorf("tran_prob["+string(s)+"]", "expected a mapping of actions")
		}
		sd := StateDefinition{ID: s}
		for j := 0; j+1 < len(actions.Content); j += 2 {
			a := Action(resolve(actions.Content[j]).Value)
			if slices.ContainsFunc(sd.Actions, func(ad ActionDefinition) bool { return ad.ID == a }) {
				return configErrorf(field("tran_prob", s, a), "duplicate action")
			}
			var probs []float64
			if err := actions.Content[j+1].Decode(&probs); err != nil {
				return &ConfigurationError{Field: field("tran_prob", s, a), Reason: "expected a list of probabilities", Err: err}
			}
			r, ok := rewards[s][a]
			if !ok {
				return configErrorf(field("rewards", s, a), "missing rewards")
			}
			delete(rewards[s], a)
			sd.Actions = append(sd.Actions, ActionDefinition{ID: a, Transitions: probs, Rewards: r})
		}
		if r, ok := rewards[s]; ok && len(r) == 0 {
			delete(rewards, s)
		}
		d.States = append(d.States, sd)
	}

	if len(rewards) > 0 {
		s := slices.Min(slices.Collect(maps.Keys(rewards)))
		if len(rewards[s]) > 0 {
			a := slices.Min(slices.Collect(maps.Keys(rewards[s])))
			return configErrorf(field("rewards", s, a), "no matching tran_prob entry")
		}
		return configErrorf("rewards["+string(s)+"]", "no matching tran_prob entry")
	}
	return nil
}

// resolve follows aliases to the node they name.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// MarshalYAML emits the document form in canonical order.
func (d Definition) MarshalYAML() (any, error) {
	tran := &yaml.Node{Kind: yaml.MappingNode}
	rew := &yaml.Node{Kind: yaml.MappingNode}
	for _, sd := range d.States {
		ta := &yaml.Node{Kind: yaml.MappingNode}
		ra := &yaml.Node{Kind: yaml.MappingNode}
		if len(sd.Actions) == 0 {
			ta.Style = yaml.FlowStyle
			ra.Style = yaml.FlowStyle
		}
		for _, ad := range sd.Actions {
			ta.Content = append(ta.Content, strNode(string(ad.ID)), floatSeq(ad.Transitions))
			ra.Content = append(ra.Content, strNode(string(ad.ID)), floatSeq(ad.Rewards))
		}
		tran.Content = append(tran.Content, strNode(string(sd.ID)), ta)
		rew.Content = append(rew.Content, strNode(string(sd.ID)), ra)
	}
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			strNode("gamma"), floatNode(d.Gamma),
			strNode("tran_prob"), tran,
			strNode("rewards"), rew,
		},
	}, nil
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func floatNode(f float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(f, 'g', -1, 64)}
}

func floatSeq(fs []float64) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, f := range fs {
		n.Content = append(n.Content, floatNode(f))
	}
	return n
}

// WriteJSON emits the document form as JSON, keeping canonical order.
func (d Definition) WriteJSON(w io.Writer) error {
	var b bytes.Buffer
	gamma, err := json.Marshal(d.Gamma)
	if err != nil {
		return fmt.Errorf("encode gamma: %w", err)
	}
	fmt.Fprintf(&b, "{\n  \"gamma\": %s,\n  \"tran_prob\": ", gamma)
	if err := d.writeTable(&b, func(ad ActionDefinition) []float64 { return ad.Transitions }); err != nil {
		return err
	}
	b.WriteString(",\n  \"rewards\": ")
	if err := d.writeTable(&b, func(ad ActionDefinition) []float64 { return ad.Rewards }); err != nil {
		return err
	}
	b.WriteString("\n}\n")
	_, err = w.Write(b.Bytes())
	return err
}

func (d Definition) writeTable(b *bytes.Buffer, row func(ActionDefinition) []float64) error {
	b.WriteString("{")
	for i, sd := range d.States {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(b, "\n    %s: {", jsonString(string(sd.ID)))
		for j, ad := range sd.Actions {
			if j > 0 {
				b.WriteString(", ")
			}
			vals, err := json.Marshal(row(ad))
			if err != nil {
				return fmt.Errorf("encode %s: %w", field("", sd.ID, ad.ID), err)
			}
			fmt.Fprintf(b, "%s: %s", jsonString(string(ad.ID)), vals)
		}
		b.WriteString("}")
	}
	b.WriteString("\n  }")
	return nil
}

func jsonString(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}
