package quiz_test

import (
	"testing"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

func sampleQuestions(n int) []quiz.Question {
	out := make([]quiz.Question, 0, n)
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		out = append(out, quiz.Question{
			ID:   "q-" + id,
			Type: quiz.TypeMultipleChoice,
			Options: []quiz.Option{
				{ID: "o-" + id + "-1", IsCorrect: true},
				{ID: "o-" + id + "-2"},
				{ID: "o-" + id + "-3"},
			},
		})
	}
	return out
}

func idSet(qs []quiz.Question) map[string]bool {
	set := map[string]bool{}
	for _, q := range qs {
		set[q.ID] = true
		for _, o := range q.Options {
			set[o.ID] = true
		}
	}
	return set
}

func TestPresentIsPermutation(t *testing.T) {
	in := sampleQuestions(10)
	out := quiz.Present(in, true, true)

	if len(out) != len(in) {
		t.Fatalf("got %d questions, want %d", len(out), len(in))
	}
	want := idSet(in)
	got := idSet(out)
	if len(got) != len(want) {
		t.Fatalf("id count changed: got %d, want %d", len(got), len(want))
	}
	for id := range want {
		if !got[id] {
			t.Errorf("id %s lost in shuffle", id)
		}
	}
}

func TestPresentDoesNotMutateInput(t *testing.T) {
	in := sampleQuestions(10)
	before := make([]string, len(in))
	for i, q := range in {
		before[i] = q.ID
	}

	quiz.Present(in, true, true)

	for i, q := range in {
		if q.ID != before[i] {
			t.Fatalf("input slice mutated at %d: %s != %s", i, q.ID, before[i])
		}
		if q.Options[0].ID != "o-"+string(rune('a'+i))+"-1" {
			t.Fatalf("input options mutated at %d", i)
		}
	}
}

func TestPresentNoShuffleKeepsOrder(t *testing.T) {
	in := sampleQuestions(6)
	out := quiz.Present(in, false, false)
	for i := range in {
		if out[i].ID != in[i].ID {
			t.Fatalf("order changed at %d without shuffle", i)
		}
	}
}

func TestPresentKeepsCorrectnessFlags(t *testing.T) {
	out := quiz.Present(sampleQuestions(5), true, true)
	for _, q := range out {
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			t.Fatalf("question %s: %d options flagged correct, want 1", q.ID, correct)
		}
	}
}

func TestStripAnswerKeys(t *testing.T) {
	in := sampleQuestions(4)
	out := quiz.StripAnswerKeys(in)

	for _, q := range out {
		for _, o := range q.Options {
			if o.IsCorrect {
				t.Fatalf("question %s: option %s still flagged correct", q.ID, o.ID)
			}
		}
	}
	// The source must keep its key.
	if !in[0].Options[0].IsCorrect {
		t.Fatal("stripping leaked into the input slice")
	}
}
