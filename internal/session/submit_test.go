package session

import (
	"reflect"
	"testing"

	"github.com/abhisek/wordiz/internal/vocab"
)

func TestTallyKeepsBatchOrder(t *testing.T) {
	batch := vocab.Batch{Words: []string{"eel", "cat", "dog", "ant"}, TotalPages: 1}
	sel := map[string]vocab.Answer{
		"dog": vocab.Unknown,
		"ant": vocab.Known,
		"eel": vocab.Unknown,
		"cat": vocab.Known,
	}

	known, unknown := Tally(batch, sel)
	if want := []string{"cat", "ant"}; !reflect.DeepEqual(known, want) {
		t.Errorf("known = %v, want %v", known, want)
	}
	if want := []string{"eel", "dog"}; !reflect.DeepEqual(unknown, want) {
		t.Errorf("unknown = %v, want %v", unknown, want)
	}
}

func TestTallySkipsUnanswered(t *testing.T) {
	batch := vocab.Batch{Words: []string{"a", "b"}}
	known, unknown := Tally(batch, map[string]vocab.Answer{"a": vocab.Known, "zzz": vocab.Unknown})
	if len(known) != 1 || len(unknown) != 0 {
		t.Errorf("Tally = %v, %v", known, unknown)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		score Score
		str   string
		ratio float64
	}{
		{Score{Known: 2, Unknown: 1}, "2/3", 2.0 / 3.0},
		{Score{Known: 0, Unknown: 4}, "0/4", 0},
		{Score{}, "0/0", 0},
	}
	for _, tt := range tests {
		if got := tt.score.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.score.Ratio(); got != tt.ratio {
			t.Errorf("Ratio() = %v, want %v", got, tt.ratio)
		}
	}
}

func TestCompletionMessage(t *testing.T) {
	tests := []struct {
		name      string
		mode      vocab.Mode
		batch     vocab.Batch
		submitted bool
		score     Score
		want      string
	}{
		{"server message", vocab.ModeLearn, vocab.Batch{Completed: true, Message: "Done!"}, false, Score{}, "Done!"},
		{"learn submitted", vocab.ModeLearn, vocab.Batch{}, true, Score{}, "Congratulations! You have learned all the words."},
		{"learn empty", vocab.ModeLearn, vocab.Batch{}, false, Score{}, "You have learned all the words!"},
		{"review empty", vocab.ModeReview, vocab.Batch{}, false, Score{}, "No words to review. Great job!"},
		{"exam empty", vocab.ModeExam, vocab.Batch{}, false, Score{}, "No words found."},
		{"exam score", vocab.ModeExam, vocab.Batch{}, true, Score{Known: 2, Unknown: 1}, "Exam finished! Your score: 2/3. Added 1 words to review list"},
		{"exam perfect", vocab.ModeExam, vocab.Batch{}, true, Score{Known: 3}, "Exam finished! Your score: 3/3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := completionMessage(tt.mode, tt.batch, tt.submitted, tt.score); got != tt.want {
				t.Errorf("completionMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
