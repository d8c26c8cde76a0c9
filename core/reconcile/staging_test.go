package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		input  []widget
		expect []widget
	}{
		{
			name:   "Empty input",
			input:  nil,
			expect: nil,
		},
		{
			name: "Distinct keys keep input order",
			input: []widget{
				{Code: "b", Label: "b1", Version: base},
				{Code: "a", Label: "a1", Version: base},
			},
			expect: []widget{
				{Code: "b", Label: "b1", Version: base},
				{Code: "a", Label: "a1", Version: base},
			},
		},
		{
			name: "Greatest timestamp wins",
			input: []widget{
				{Code: "a", Label: "newest", Version: base.Add(2 * time.Hour)},
				{Code: "a", Label: "oldest", Version: base},
				{Code: "a", Label: "middle", Version: base.Add(time.Hour)},
			},
			expect: []widget{
				{Code: "a", Label: "newest", Version: base.Add(2 * time.Hour)},
			},
		},
		{
			name: "Later record wins an exact tie",
			input: []widget{
				{Code: "a", Label: "first", Version: base},
				{Code: "b", Label: "other", Version: base},
				{Code: "a", Label: "second", Version: base},
			},
			expect: []widget{
				{Code: "a", Label: "second", Version: base},
				{Code: "b", Label: "other", Version: base},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.input, widgetAdapter{}.Key, widgetAdapter{}.OrderedAt)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestDedupe_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	input := []widget{
		{Code: "a", Label: "old", Version: base},
		{Code: "a", Label: "new", Version: base.Add(time.Minute)},
	}

	_ = Dedupe(input, widgetAdapter{}.Key, widgetAdapter{}.OrderedAt)

	require.Len(t, input, 2)
	assert.Equal(t, "old", input[0].Label)
	assert.Equal(t, "new", input[1].Label)
}

func TestStage(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	batch := []widget{
		{Code: "x", Label: "x1", Version: base},
		{Code: "y", Label: "y1", Version: base},
		{Code: "x", Label: "x2", Version: base.Add(time.Second)},
	}

	stage := Stage(batch, widgetAdapter{})

	assert.Equal(t, 2, stage.Len())
	assert.Equal(t, []string{"x", "y"}, stage.Keys())
	assert.Equal(t, "x2", stage.Rows()[0].Label)

	stage.Rows()[0].Label = "changed"
	assert.Equal(t, "x1", batch[0].Label)

	stage.Discard()
	assert.Equal(t, 0, stage.Len())
	assert.Nil(t, stage.Keys())
}

func TestChunk(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunk(items, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, chunk(items, 10))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, chunk(items, 0))
}
