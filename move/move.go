// Package move defines the four slide directions and the scored move
// results produced by search.
package move

import (
	"fmt"
	"strings"
)

// Direction is one of the four slides. The numeric order is also the
// tie-break order when two moves search to the same value.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// AllDirections lists the directions in evaluation order.
var AllDirections = [4]Direction{Up, Down, Left, Right}

var directionNames = [4]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if int(d) >= len(directionNames) {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection accepts a full direction name or its first letter,
// case-insensitively.
func ParseDirection(s string) (Direction, error) {
	ls := strings.ToLower(strings.TrimSpace(s))
	for d, name := range directionNames {
		if ls == name || (len(ls) == 1 && ls[0] == name[0]) {
			return Direction(d), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// RankedMove is a legal move together with its searched value.
type RankedMove struct {
	Dir   Direction
	Score float64
}

func (m RankedMove) String() string {
	return fmt.Sprintf("<%s %.2f>", m.Dir, m.Score)
}
