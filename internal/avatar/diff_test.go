package avatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		original []Option
		selected []Option
		want     Changes
	}{
		{
			name:     "identical",
			original: []Option{ownedTop, ownedEyes},
			selected: []Option{ownedEyes, ownedTop},
			want:     Changes{},
		},
		{
			name:     "swapped option",
			original: []Option{ownedTop, ownedEyes},
			selected: []Option{unownedTop, ownedEyes},
			want:     Changes{Deactivate: []int64{1}, Activate: []int64{11}},
		},
		{
			name:     "new category",
			original: []Option{ownedTop},
			selected: []Option{ownedTop, unownedHat},
			want:     Changes{Activate: []int64{13}},
		},
		{
			name:     "dropped category",
			original: []Option{ownedTop, ownedEyes},
			selected: []Option{ownedTop},
			want:     Changes{Deactivate: []int64{2}},
		},
		{
			name:     "menu order",
			original: []Option{ownedTop, ownedEyes},
			selected: []Option{unownedTop, unownedEyes},
			want:     Changes{Deactivate: []int64{2, 1}, Activate: []int64{12, 11}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.original, tt.selected)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want.Activate)+len(tt.want.Deactivate) == 0, got.Empty())
		})
	}
}
