// Dynaprog solves finite Markov decision processes by dynamic programming.
//
// An MDP is described by a YAML or JSON document with three keys: gamma,
// tran_prob and rewards. States and actions keep the order in which they
// appear under tran_prob.
//
// Usage:
//
//	# Solve with both policy iteration and value iteration
//	dynaprog solve model.yaml
//
//	# Only value iteration, with a config file
//	dynaprog solve model.yaml --method vi --config dynaprog.yaml
//
//	# Check a definition without solving it
//	dynaprog validate model.yaml
//
//	# Generate a 4x4 windy gridworld and solve it
//	dynaprog gridworld --rows 4 --cols 4 --solve
//
//	# Re-solve on every save
//	dynaprog watch model.yaml
package main

func main() {
	Execute()
}
