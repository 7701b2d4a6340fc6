package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicForSeed(t *testing.T) {
	a := New(7)
	b := New(7)
	for m := 0.0; m < 3000; m += 37 {
		assert.Equal(t, a.At(m), b.At(m), "minute %v", m)
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for m := 0.0; m < 3000; m += 37 {
		if a.At(m) != b.At(m) {
			same = false
			break
		}
	}
	assert.False(t, same)
}

func TestKindIsAlwaysValid(t *testing.T) {
	s := New(11)
	for m := 0.0; m < 10000; m += 53 {
		c := s.At(m)
		switch c.Kind {
		case Sunny, Rainy, Snowy:
		default:
			t.Fatalf("unexpected kind %q at minute %v", c.Kind, m)
		}
	}
}

func TestSnowCapsTemperature(t *testing.T) {
	s := New(3)
	for m := 0.0; m < 50000; m += 13 {
		c := s.At(m)
		if c.Kind == Snowy {
			assert.LessOrEqual(t, c.TempC, 1.0)
		}
	}
}

func TestComfortMultiplierBounds(t *testing.T) {
	assert.Equal(t, 1.0, Conditions{TempC: 20}.ComfortMultiplier())
	assert.Equal(t, 1.0, Conditions{TempC: 27}.ComfortMultiplier())
	assert.Greater(t, Conditions{TempC: 32}.ComfortMultiplier(), 1.0)
	assert.Equal(t, 1.2, Conditions{TempC: -40}.ComfortMultiplier())
}

func TestCozyBonusByKind(t *testing.T) {
	assert.Zero(t, Conditions{Kind: Sunny}.CozyBonus())
	assert.Equal(t, 0.02, Conditions{Kind: Rainy}.CozyBonus())
	assert.Equal(t, 0.03, Conditions{Kind: Snowy}.CozyBonus())
}
