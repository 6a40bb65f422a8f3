package canvas

import (
	"math"
	"testing"

	"gooey-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pin struct {
	name string
	at   valueobjects.Position
}

func (p pin) Anchor() valueobjects.Position { return p.at }

func pinAt(name string, x, y float64) pin {
	return pin{name: name, at: valueobjects.MustPosition(x, y)}
}

// countingPin records how often its anchor is read
type countingPin struct {
	reads *int
}

func (c countingPin) Anchor() valueobjects.Position {
	*c.reads++
	return valueobjects.Origin()
}

func TestDistance(t *testing.T) {
	points := []valueobjects.Position{
		valueobjects.MustPosition(0, 0),
		valueobjects.MustPosition(3, 4),
		valueobjects.MustPosition(-12.5, 7),
		valueobjects.MustPosition(1e6, -1e6),
	}

	for _, a := range points {
		a := a
		assert.Zero(t, Distance(&a, &a))
		assert.Zero(t, Distance(&a, nil))
		assert.Zero(t, Distance(nil, &a))
		for _, b := range points {
			b := b
			assert.InDelta(t, Distance(&a, &b), Distance(&b, &a), 1e-9)
		}
	}

	a, b := points[0], points[1]
	assert.InDelta(t, 5.0, Distance(&a, &b), 1e-9)
	assert.Zero(t, Distance(nil, nil))
}

func TestOverlaps(t *testing.T) {
	origin := valueobjects.Origin()

	tests := []struct {
		name  string
		nodes []pin
		want  []string
	}{
		{
			name: "empty input",
			want: []string{},
		},
		{
			name:  "far node does not intersect",
			nodes: []pin{pinAt("far", 1000, 1000)},
			want:  []string{},
		},
		{
			name:  "touching edges do not overlap",
			nodes: []pin{pinAt("right", Footprint, 0), pinAt("below", 0, Footprint)},
			want:  []string{},
		},
		{
			name:  "just inside the footprint",
			nodes: []pin{pinAt("inside", Footprint-0.5, Footprint-0.5)},
			want:  []string{"inside"},
		},
		{
			name: "input order preserved",
			nodes: []pin{
				pinAt("c", 100, 0),
				pinAt("far", 500, 500),
				pinAt("a", 1, 1),
				pinAt("b", -50, 20),
			},
			want: []string{"c", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(origin, tt.nodes)
			names := make([]string, 0, len(got))
			for _, n := range got {
				names = append(names, n.name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestOverlaps_NothingWithinFootprint(t *testing.T) {
	p := valueobjects.MustPosition(40, -30)
	var nodes []pin
	for i := 0; i < 16; i++ {
		angle := float64(i) * math.Pi / 8
		// Any node at least a full footprint away on both axes cannot intersect.
		nodes = append(nodes, pinAt("n", 40+math.Copysign(Footprint+1, math.Cos(angle)), -30+math.Copysign(Footprint+1, math.Sin(angle))))
	}

	assert.Empty(t, Overlaps(p, nodes))
}

func TestOverlaps_ScenarioD(t *testing.T) {
	got := Overlaps(valueobjects.MustPosition(0, 0), []pin{pinAt("n", 1000, 1000)})
	assert.Empty(t, got)
}

func TestNearest(t *testing.T) {
	p := valueobjects.MustPosition(50, 50)

	t.Run("empty", func(t *testing.T) {
		_, ok := Nearest(p, []pin{})
		assert.False(t, ok)
	})

	t.Run("single candidate skips distance", func(t *testing.T) {
		reads := 0
		only := countingPin{reads: &reads}

		got, ok := Nearest(p, []countingPin{only})
		require.True(t, ok)
		assert.Same(t, only.reads, got.reads)
		assert.Zero(t, reads)
	})

	t.Run("strict minimum", func(t *testing.T) {
		got, ok := Nearest(p, []pin{
			pinAt("far", 120, 120),
			pinAt("near", 52, 48),
			pinAt("mid", 70, 70),
		})
		require.True(t, ok)
		assert.Equal(t, "near", got.name)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		got, ok := Nearest(p, []pin{
			pinAt("far", 0, 0),
			pinAt("first", 60, 50),
			pinAt("second", 40, 50),
			pinAt("third", 50, 60),
		})
		require.True(t, ok)
		assert.Equal(t, "first", got.name)
	})

	t.Run("does not reorder the caller's slice", func(t *testing.T) {
		candidates := []pin{pinAt("a", 100, 100), pinAt("b", 51, 51), pinAt("c", 0, 0)}
		before := append([]pin(nil), candidates...)

		_, _ = Nearest(p, candidates)
		assert.Equal(t, before, candidates)
	})
}

func BenchmarkOverlaps(b *testing.B) {
	nodes := make([]pin, 0, 1000)
	for i := 0; i < 1000; i++ {
		nodes = append(nodes, pinAt("n", float64(i%40)*64, float64(i/40)*64))
	}
	p := valueobjects.MustPosition(640, 640)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Overlaps(p, nodes)
	}
}
