package wordcount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stagehand/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

func TestRunWordCount(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		wantWords int
		wantChars int
	}{
		{name: "simple sentence", text: "the quick brown fox", wantWords: 4, wantChars: 19},
		{name: "empty text", text: "", wantWords: 0, wantChars: 0},
		{name: "extra whitespace", text: "  a \t b\n", wantWords: 2, wantChars: 8},
		{name: "multibyte runes", text: "héllo wörld", wantWords: 2, wantChars: 11},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.Context()
			out, err := RunWordCount(ctx, &Input{Text: tc.text})
			require.NoError(t, err)

			result := out.(*Output)
			assert.Equal(t, tc.wantWords, result.Words)
			assert.Equal(t, tc.wantChars, result.Chars)
		})
	}
}

func TestRunWordCount_DataArgumentWins(t *testing.T) {
	ctx, _ := testutil.Context()

	out, err := RunWordCount(ctx, &Input{Text: "ignored entirely here", Data: cty.StringVal("one two")})
	require.NoError(t, err)
	assert.Equal(t, 2, out.(*Output).Words)
}

func TestRunWordCount_NonStringDataRejected(t *testing.T) {
	ctx, _ := testutil.Context()

	_, err := RunWordCount(ctx, &Input{Data: cty.NumberIntVal(3)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a string")
}
