package soa

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElemGetSet(t *testing.T) {
	c := NewFixed[Reading](2)
	e := c.At(0)
	e.Set("Time", int64(42))
	e.Set("Value", 1.5)
	assert.Equal(t, int64(42), e.Get("Time"))
	assert.Equal(t, 1.5, e.Get("Value"))
	assert.Equal(t, uint32(0), e.Get("Count"))

	assert.Panics(t, func() { e.Get("Nope") })
	assert.Panics(t, func() { e.Set("Time", int32(1)) })
	assert.Panics(t, func() { e.Set("Time", "soon") })
}

func TestElemTypedAccessors(t *testing.T) {
	c := NewSlice[Reading]()
	c.SetLen(1)
	e := c.At(0)
	SetField(e, "Count", uint32(9))
	assert.Equal(t, uint32(9), GetField[uint32](e, "Count"))

	SetField(e, "Value", math.Pi)
	assert.Equal(t, math.Pi, GetField[float64](e, "Value"))

	assert.Panics(t, func() { GetField[int32](e, "Count") })
	assert.Panics(t, func() { SetField(e, "Count", int64(1)) })
}

func TestElemTypedAccessorsNamedType(t *testing.T) {
	c := NewSlice[Span]()
	c.SetLen(1)
	SetField(c.At(0), "From", Meters(3))
	assert.Equal(t, Meters(3), GetField[Meters](c.At(0), "From"))
	assert.Panics(t, func() { GetField[float64](c.At(0), "From") })
}

func TestElemEqualitySameIndex(t *testing.T) {
	c := NewFixed[Vec3](3)
	assert.True(t, c.At(1).Equal(c.At(1)))

	// two proxies for the same slot are interchangeable
	a, b := c.At(2), c.At(2)
	a.Set("X", int32(5))
	assert.Equal(t, int32(5), b.Get("X"))
	assert.True(t, a.Equal(b))
}

func TestElemEqualityAcrossIndices(t *testing.T) {
	c := NewFixed[Vec3](2)
	assert.True(t, c.At(0).Equal(c.At(1))) // both hold defaults
	c.At(1).Set("Z", int32(-1))
	assert.False(t, c.At(0).Equal(c.At(1)))
}

func TestElemEqualityAcrossContainers(t *testing.T) {
	fixed := NewFixed[Vec3](1)
	grow := NewSlice[Vec3]()
	grow.SetLen(1)
	assert.True(t, fixed.At(0).Equal(grow.At(0)))
	grow.At(0).Set("Y", int32(0))
	assert.False(t, fixed.At(0).Equal(grow.At(0)))
}

func TestElemEqualityProperty(t *testing.T) {
	c := NewSlice[Reading]()
	c.SetLen(2)
	condition := func(a, b Reading) bool {
		c.At(0).SetValue(a)
		c.At(1).SetValue(b)
		return c.At(0).Equal(c.At(1)) == (a == b)
	}
	require.NoError(t, quick.Check(condition, &quick.Config{}))
}

func TestElemNaN(t *testing.T) {
	c := NewFixed[Reading](1)
	c.At(0).Set("Value", math.NaN())
	assert.False(t, c.At(0).Equal(c.At(0)))
	assert.False(t, c.At(0).EqualValue(c.At(0).Value()))
}

func TestElemValueIsCopy(t *testing.T) {
	c := NewFixed[Vec3](1)
	v := c.At(0).Value()
	v.X = 99
	assert.Equal(t, int32(1), c.At(0).Get("X"))
}

func TestElemIndex(t *testing.T) {
	c := NewFixed[Vec3](5)
	assert.Equal(t, 3, c.At(3).Index())
	assert.Equal(t, 2, c.Slice(2, 4).At(0).Index())
}

func TestViewSliceEquivalence(t *testing.T) {
	c := NewSlice[Reading]()
	c.SetLen(6)
	for i := 0; i < c.Len(); i++ {
		c.At(i).SetValue(Reading{Time: int64(i), Count: uint32(i * i)})
	}

	var got []Reading
	for v := range c.All().Values() {
		got = append(got, v)
	}
	var want []Reading
	for i := 0; i < c.Len(); i++ {
		want = append(want, c.At(i).Value())
	}
	assert.Equal(t, want, got)
}

func TestViewRestartable(t *testing.T) {
	c := NewFixed[Vec3](4)
	c.At(2).Set("X", int32(7))
	view := c.Slice(1, 4)

	collect := func() []Vec3 {
		var out []Vec3
		for v := range view.Values() {
			out = append(out, v)
		}
		return out
	}
	first := collect()
	second := collect()
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, int32(7), first[1].X)
}

func TestViewReflectsLiveStorage(t *testing.T) {
	c := NewFixed[Vec3](2)
	view := c.All()
	c.At(0).Set("X", int32(123))
	assert.Equal(t, int32(123), view.At(0).Get("X"))
}

func TestViewEarlyStop(t *testing.T) {
	c := NewFixed[Vec3](10)
	seen := 0
	for range c.All().Elems() {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func TestViewEqual(t *testing.T) {
	a := NewFixed[Vec3](3)
	b := NewSlice[Vec3]()
	b.SetLen(3)
	assert.True(t, a.All().Equal(b.All()))

	b.At(2).Set("Z", int32(0))
	assert.False(t, a.All().Equal(b.All()))
	assert.False(t, a.Slice(0, 2).Equal(b.All()))
	assert.True(t, a.Slice(0, 2).Equal(b.Slice(0, 2)))
}

func TestViewNarrow(t *testing.T) {
	c := NewFixed[Vec3](6)
	v := c.Slice(1, 5)
	require.Equal(t, 4, v.Len())
	inner := v.Slice(1, 3)
	assert.Equal(t, 2, inner.Len())
	assert.Equal(t, 2, inner.At(0).Index())
	assert.Panics(t, func() { v.Slice(0, 5) })
	assert.Panics(t, func() { v.At(4) })
}

func FuzzElemRoundTrip(f *testing.F) {
	f.Add(int32(1), int32(2), int32(3))
	f.Fuzz(fuzzElemRoundTrip)
}

func fuzzElemRoundTrip(t *testing.T, x, y, z int32) {
	v := Vec3{X: x, Y: y, Z: z}
	c := NewFixed[Vec3](3)
	c.At(1).SetValue(v)
	if got := c.At(1).Value(); got != v {
		t.Errorf("fixed round trip: wrote %+v, read %+v", v, got)
	}
	if !c.At(1).EqualValue(v) {
		t.Errorf("EqualValue(%+v) = false after SetValue", v)
	}
	// neighbours keep their defaults
	if !c.At(0).EqualValue(Vec3{X: 1, Y: 4, Z: 9}) || !c.At(2).EqualValue(Vec3{X: 1, Y: 4, Z: 9}) {
		t.Error("SetValue bled into neighbouring slots")
	}
}
