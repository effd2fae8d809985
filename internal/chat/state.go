// Package chat runs one conversational turn: it routes an utterance
// through the assessment state machine, calls the engine, and renders the
// result for display.
package chat

import "github.com/magungh1/exporo-sme-export-assistant/internal/detector"

// State is the assessment flow state of a session.
type State string

const (
	StateIdle            State = "idle"
	StateAwaitingCountry State = "awaiting_country"
	StateReadyToAnalyze  State = "ready_to_analyze"
)

// Transition is the outcome of feeding one utterance to the state machine.
// Country is set when To is StateReadyToAnalyze.
type Transition struct {
	From    State
	To      State
	Country string
}

// Step computes the next state for an utterance. It is pure.
func Step(from State, utterance string) Transition {
	t := Transition{From: from, To: StateIdle}
	switch from {
	case StateAwaitingCountry:
		if country, ok := detector.ResolveReply(utterance); ok {
			t.To, t.Country = StateReadyToAnalyze, country.Name
			return t
		}
		if detector.Detect(utterance).Triggered {
			t.To = StateAwaitingCountry
		}
	default:
		// ready_to_analyze never outlives a turn; treat it as idle.
		d := detector.Detect(utterance)
		switch {
		case d.HasCountry():
			t.To, t.Country = StateReadyToAnalyze, d.Country
		case d.Triggered:
			t.To = StateAwaitingCountry
		}
	}
	return t
}
