package circuit

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfBounds is returned when a part would extend past the strand
var ErrOutOfBounds = errors.New("part extends past the end of the strand")

// ErrCollision is returned when a part would overlap another without an allowance
var ErrCollision = errors.New("part overlaps another part")

// Circuit is a strand of fixed length with its parts, in declaration order.
// Components is the only source of truth: operons and reports are derived from it.
type Circuit struct {
	// Length of the strand in bp
	Length int

	// Circular is true for plasmids
	Circular bool

	// Components in declaration order
	Components []Component
}

// Collision is a pair of overlapping parts, by index into Components
type Collision struct {
	A, B int

	// Overlap is the number of shared bases
	Overlap int
}

// overlap returns the number of bases shared by two placed parts
func overlap(a, b Component) int {
	if !a.Placed() || !b.Placed() {
		return 0
	}
	start, end := a.Start(), a.End()
	if b.Start() > start {
		start = b.Start()
	}
	if b.End() < end {
		end = b.End()
	}
	if end <= start {
		return 0
	}
	return end - start
}

// overlapAllowed is true when either side opts in or one is backbone and the other insert
func overlapAllowed(a, b Component) bool {
	return a.AllowOverlap || b.AllowOverlap || a.Backbone != b.Backbone
}

// Collisions lists every pair of parts that share bases without an allowance
func (c *Circuit) Collisions() (collisions []Collision) {
	for i := 0; i < len(c.Components); i++ {
		for j := i + 1; j < len(c.Components); j++ {
			a, b := c.Components[i], c.Components[j]
			if n := overlap(a, b); n > 0 && !overlapAllowed(a, b) {
				collisions = append(collisions, Collision{A: i, B: j, Overlap: n})
			}
		}
	}
	return
}

// OutOfBounds lists the indexes of placed parts that start before 0 or end past the strand
func (c *Circuit) OutOfBounds() (indexes []int) {
	for i, comp := range c.Components {
		if !comp.Placed() {
			continue
		}
		if comp.Start() < 0 || comp.End() > c.Length {
			indexes = append(indexes, i)
		}
	}
	return
}

// At returns the indexes of the parts covering the 0-based base bp
func (c *Circuit) At(bp int) (indexes []int) {
	for i, comp := range c.Components {
		if comp.Placed() && comp.Start() <= bp && bp < comp.End() {
			indexes = append(indexes, i)
		}
	}
	return
}

// CanPlace checks whether comp fits at pos without leaving the strand or colliding.
// ignore is an index into Components to skip (the part being moved), or -1.
func (c *Circuit) CanPlace(comp Component, pos, ignore int) error {
	placed := comp.At(pos)
	if pos < 0 || placed.End() > c.Length {
		return fmt.Errorf("failed to place %s at %d on a %d bp strand: %w", comp.Name, pos, c.Length, ErrOutOfBounds)
	}

	for i, other := range c.Components {
		if i == ignore {
			continue
		}
		if overlap(placed, other) > 0 && !overlapAllowed(placed, other) {
			return fmt.Errorf("failed to place %s at %d, overlaps %s: %w", comp.Name, pos, other.Name, ErrCollision)
		}
	}
	return nil
}

// Move places the part at index i at pos, after checking it fits
func (c *Circuit) Move(i, pos int) error {
	if i < 0 || i >= len(c.Components) {
		return fmt.Errorf("failed to move part %d: circuit has %d parts", i, len(c.Components))
	}
	if err := c.CanPlace(c.Components[i], pos, i); err != nil {
		return err
	}
	c.Components[i] = c.Components[i].At(pos)
	return nil
}

// Unplace removes the part at index i from the strand, keeping it in the circuit
func (c *Circuit) Unplace(i int) {
	if i >= 0 && i < len(c.Components) {
		c.Components[i].Position = nil
	}
}

// Index returns the index of the first part with the name, or -1
func (c *Circuit) Index(name string) int {
	for i, comp := range c.Components {
		if comp.Name == name {
			return i
		}
	}
	return -1
}

// placedIndex is a placed part and its declaration index
type placedIndex struct {
	index int
	comp  Component
}

// sweepOrder returns placed parts by start, then kind rank, then declaration order
func sweepOrder(components []Component) []placedIndex {
	placed := make([]placedIndex, 0, len(components))
	for i, comp := range components {
		if comp.Placed() {
			placed = append(placed, placedIndex{index: i, comp: comp})
		}
	}

	sort.SliceStable(placed, func(i, j int) bool {
		a, b := placed[i].comp, placed[j].comp
		if a.Start() != b.Start() {
			return a.Start() < b.Start()
		}
		if a.Kind.rank() != b.Kind.rank() {
			return a.Kind.rank() < b.Kind.rank()
		}
		return placed[i].index < placed[j].index
	})

	return placed
}
