// Package text_test tests markup stripping.
package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/speech-backends/openjtalk/internal/text"
)

func TestStrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "plain text passes through",
			markup: "こんにちは",
			want:   "こんにちは",
		},
		{
			name:   "tags are removed",
			markup: `<speak>hello <emphasis level="strong">world</emphasis></speak>`,
			want:   "hello world",
		},
		{
			name:   "self closing tags are removed",
			markup: `first<break time="200ms"/>second`,
			want:   "firstsecond",
		},
		{
			name:   "entities are decoded",
			markup: "1 &lt; 2 &amp;&amp; 3 &gt; 2",
			want:   `1 < 2 && 3 > 2`,
		},
		{
			name:   "quote entities are decoded",
			markup: "say &quot;hi&quot; or &apos;hi&apos;",
			want:   `say "hi" or 'hi'`,
		},
		{
			name:   "empty input",
			markup: "",
			want:   "",
		},
	}

	stripper := text.NewStripper()

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, stripper.Strip(testCase.markup))
		})
	}
}
