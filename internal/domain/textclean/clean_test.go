package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forPelevin/subcue/internal/types"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spacing around punctuation", "hello ,world !  how are you ?", "Hello, world! how are you?"},
		{"sentence spacing", "Done.Next one", "Done. Next one"},
		{"abbreviations untouched", "the U.S. Army and a Ph.D student", "The U.S. Army and a Ph.D student"},
		{"initials untouched", "J.R.R. Tolkien wrote it", "J.R.R. Tolkien wrote it"},
		{"decimal untouched", "it costs 3.50 now", "It costs 3.50 now"},
		{"contractions", "i m sure we dont know, Cant say", "I'm sure we don't know, Can't say"},
		{"lone i", "then i left", "Then I left"},
		{"typographic", "“wait” – she said…", `"Wait" - she said...`},
		{"control characters", "a\tb\x00c", "A b c"},
		{"leading digit kept", "3 apples", "3 apples"},
		{"keeps line breaks", "first line\n  second  line ", "First line\nsecond line"},
		{"blank", "  \n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanCues(t *testing.T) {
	in := []types.Cue{
		{Start: 0, End: 1, Text: []string{"hello", ",", "there"}},
		{Start: 1, End: 2, Text: []string{"Fine."}},
		{Start: 2, End: 3, Text: []string{"\t"}},
	}
	out, stats := CleanCues(in)

	assert.Equal(t, 1, stats.ChangedCues)
	assert.Equal(t, []string{"Hello,", "there"}, out[0].Text)
	assert.Equal(t, []string{"Fine."}, out[1].Text)
	assert.Equal(t, []string{"\t"}, out[2].Text)
	assert.Equal(t, []string{"hello", ",", "there"}, in[0].Text, "input must not be mutated")
	assert.Equal(t, 0.0, out[0].Start)
}
