package quiz

import "math/rand"

// Present returns the questions in presentation order. Shuffling changes
// order only; question and option identifiers are untouched, and grading
// keys on identifiers, so shuffling never alters correctness. Input slices
// are copied, not mutated.
func Present(questions []Question, shuffleQuestions, shuffleOptions bool) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)

	if shuffleQuestions {
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	if shuffleOptions {
		for i := range out {
			opts := make([]Option, len(out[i].Options))
			copy(opts, out[i].Options)
			rand.Shuffle(len(opts), func(a, b int) { opts[a], opts[b] = opts[b], opts[a] })
			out[i].Options = opts
		}
	}
	return out
}

// StripAnswerKeys blanks correctness flags before questions are served to a
// test-taker.
func StripAnswerKeys(questions []Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	for i := range out {
		opts := make([]Option, len(out[i].Options))
		copy(opts, out[i].Options)
		for j := range opts {
			opts[j].IsCorrect = false
		}
		out[i].Options = opts
	}
	return out
}
