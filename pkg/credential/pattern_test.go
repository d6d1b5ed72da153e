package credential_test

import (
	"testing"

	"github.com/dmitrymomot/mfakit/pkg/credential"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternToString(t *testing.T) {
	t.Parallel()
	points := []credential.Point{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 2, Col: 2}}
	assert.Equal(t, "0,0-0,1-1,1-2,2", credential.PatternToString(points))
	assert.Equal(t, "", credential.PatternToString(nil))
}

func TestStringToPattern_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, s := range []string{
		"0,0-0,1-1,1-2,2",
		"2,2-1,1-0,0-0,1",
		"0,0",
		"3,4-10,11",
	} {
		points, err := credential.StringToPattern(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, credential.PatternToString(points))
	}
}

func TestStringToPattern_Malformed(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "0", "0,0-", "a,b", "0;0-1;1", "0,0,0"} {
		_, err := credential.StringToPattern(s)
		assert.ErrorIs(t, err, credential.ErrInvalidPattern, s)
	}
}

func TestPattern_OrderMatters(t *testing.T) {
	t.Parallel()
	a := []credential.Point{{0, 0}, {0, 1}, {0, 2}, {1, 2}}
	b := []credential.Point{{0, 1}, {0, 0}, {0, 2}, {1, 2}}
	assert.NotEqual(t, credential.PatternToString(a), credential.PatternToString(b))
}

func TestValidatePattern(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		points   []credential.Point
		gridSize int
		want     bool
	}{
		{name: "four points", points: []credential.Point{{0, 0}, {0, 1}, {0, 2}, {1, 2}}, gridSize: 3, want: true},
		{name: "all nine", points: []credential.Point{{0, 0}, {0, 1}, {0, 2}, {1, 2}, {1, 1}, {1, 0}, {2, 0}, {2, 1}, {2, 2}}, gridSize: 3, want: true},
		{name: "too short", points: []credential.Point{{0, 0}, {0, 1}, {0, 2}}, gridSize: 3, want: false},
		{name: "empty", points: nil, gridSize: 3, want: false},
		{name: "duplicate", points: []credential.Point{{0, 0}, {0, 1}, {0, 0}, {1, 2}}, gridSize: 3, want: false},
		{name: "row out of bounds", points: []credential.Point{{0, 0}, {0, 1}, {0, 2}, {3, 0}}, gridSize: 3, want: false},
		{name: "negative col", points: []credential.Point{{0, 0}, {0, 1}, {0, 2}, {1, -1}}, gridSize: 3, want: false},
		{name: "bigger grid", points: []credential.Point{{0, 0}, {3, 3}, {2, 1}, {1, 2}}, gridSize: 4, want: true},
		{name: "ten points on bigger grid", points: []credential.Point{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {1, 3}, {1, 2}, {1, 1}, {1, 0}, {2, 0}, {2, 1}}, gridSize: 4, want: false},
		{name: "zero grid means default", points: []credential.Point{{0, 0}, {0, 1}, {0, 2}, {2, 2}}, gridSize: 0, want: true},
		{name: "zero grid bounds still enforced", points: []credential.Point{{0, 0}, {0, 1}, {0, 2}, {3, 3}}, gridSize: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, credential.ValidatePattern(tt.points, tt.gridSize))
		})
	}
}
