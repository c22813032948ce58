// Package lists computes display prefixes for numbered and bulleted list
// items.
//
// A [Tracker] keeps one counter per level, shared by every list of a
// document. On an item at level L it increments counter[L] and zeroes every
// deeper counter. An ordered item's prefix is the dotted counter path up to L
// followed by a period; a bullet item's prefix is its glyph. Both are
// indented by four spaces per level:
//
//	t := lists.NewTracker()
//	t.Next(0, false, "").Prefix // "1. "
//	t.Next(1, false, "").Prefix // "    1.1. "
//	t.Next(0, false, "").Prefix // "2. "
package lists

import (
	"strconv"
	"strings"
)

// DefaultBullet is used when a bullet item has no renderable glyph.
const DefaultBullet = "•"

// MaxLevel is the deepest list level Word supports (0-based).
const MaxLevel = 8

// Item is the outcome of advancing a list by one entry.
type Item struct {
	Level  int
	Prefix string
	Bullet bool
}

// Tracker holds the list counters of one document.
type Tracker struct {
	counters [MaxLevel + 1]int
}

// NewTracker returns a tracker with every counter at zero.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Next records an item at level and returns its prefix. Levels outside
// 0..MaxLevel are clamped.
func (t *Tracker) Next(level int, bullet bool, glyph string) Item {
	level = min(max(level, 0), MaxLevel)

	c := &t.counters
	c[level]++
	for l := level + 1; l <= MaxLevel; l++ {
		c[l] = 0
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", 4*level))
	if bullet {
		if glyph == "" {
			glyph = DefaultBullet
		}
		sb.WriteString(glyph)
	} else {
		for l := 0; l <= level; l++ {
			sb.WriteString(strconv.Itoa(c[l]))
			sb.WriteByte('.')
		}
	}
	sb.WriteByte(' ')

	return Item{Level: level, Prefix: sb.String(), Bullet: bullet}
}

// Counter returns the current counter at a level.
func (t *Tracker) Counter(level int) int {
	if level < 0 || level > MaxLevel {
		return 0
	}
	return t.counters[level]
}

// Reset sets every counter back to zero.
func (t *Tracker) Reset() {
	t.counters = [MaxLevel + 1]int{}
}
