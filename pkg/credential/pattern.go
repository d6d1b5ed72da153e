package credential

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultGridSize is the side of the square pattern grid.
	DefaultGridSize = 3
	// MinPatternLength is the minimum number of points in a pattern.
	MinPatternLength = 4
	// MaxPatternLength is the maximum number of points in a pattern, on any grid size.
	MaxPatternLength = 9
)

// Point is one cell of the pattern grid.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Point) String() string {
	return strconv.Itoa(p.Row) + "," + strconv.Itoa(p.Col)
}

// PatternToString renders points in entry order as "r,c-r,c-...".
// Order matters: the same points in a different order are a different pattern.
func PatternToString(points []Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	return strings.Join(parts, "-")
}

// StringToPattern parses the canonical form produced by PatternToString.
func StringToPattern(s string) ([]Point, error) {
	if s == "" {
		return nil, ErrInvalidPattern
	}
	parts := strings.Split(s, "-")
	points := make([]Point, 0, len(parts))
	for _, part := range parts {
		r, c, ok := strings.Cut(part, ",")
		if !ok {
			return nil, fmt.Errorf("%w: malformed point %q", ErrInvalidPattern, part)
		}
		row, err := strconv.Atoi(r)
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, err)
		}
		col, err := strconv.Atoi(c)
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, err)
		}
		points = append(points, Point{Row: row, Col: col})
	}
	return points, nil
}

// ValidatePattern reports whether points has four to nine entries, no repeats
// and every point inside a gridSize x gridSize grid. A non-positive gridSize
// means DefaultGridSize.
func ValidatePattern(points []Point, gridSize int) bool {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	if len(points) < MinPatternLength || len(points) > MaxPatternLength {
		return false
	}

	seen := make(map[Point]struct{}, len(points))
	for _, p := range points {
		if p.Row < 0 || p.Row >= gridSize || p.Col < 0 || p.Col >= gridSize {
			return false
		}
		if _, dup := seen[p]; dup {
			return false
		}
		seen[p] = struct{}{}
	}
	return true
}
