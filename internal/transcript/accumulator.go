// Package transcript turns the result stream of a speech engine into one
// finalized utterance per recording session.
package transcript

import "strings"

// Result is one entry of the engine's cumulative result list.
type Result struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Accumulator collects distinct final phrases. Engines re-deliver refined
// versions of earlier phrases; a longer phrase containing an earlier one
// replaces it, and a phrase already covered by an entry is dropped.
type Accumulator struct {
	phrases []string
	next    int
}

// Process consumes the results not seen yet and returns the interim
// preview text of this batch.
func (a *Accumulator) Process(results []Result) string {
	var preview strings.Builder
	for i := a.next; i < len(results); i++ {
		r := results[i]
		if !r.Final {
			preview.WriteString(r.Text)
			continue
		}
		a.add(strings.TrimSpace(r.Text))
	}
	if len(results) > a.next {
		a.next = len(results)
	}
	return preview.String()
}

func (a *Accumulator) add(text string) {
	if text == "" {
		return
	}
	for _, p := range a.phrases {
		if p == text {
			return
		}
	}
	for i, p := range a.phrases {
		if len(text) > len(p) && strings.Contains(text, p) {
			a.phrases[i] = text
			return
		}
	}
	for _, p := range a.phrases {
		if len(p) >= len(text) && strings.Contains(p, text) {
			return
		}
	}
	a.phrases = append(a.phrases, text)
}

// Phrases returns a copy of the settled phrases.
func (a *Accumulator) Phrases() []string {
	return append([]string(nil), a.phrases...)
}

// Flush returns the utterance and resets the accumulator.
func (a *Accumulator) Flush() string {
	out := strings.TrimSpace(strings.Join(a.phrases, " "))
	a.Reset()
	return out
}

// Reset discards all state.
func (a *Accumulator) Reset() {
	a.phrases = nil
	a.next = 0
}
