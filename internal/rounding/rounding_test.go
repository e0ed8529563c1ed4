package rounding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"positive half", 2.5, 3},
		{"negative half", -2.5, -3},
		{"whole", 18.0, 18},
		{"zero", 0, 0},
		{"small positive half", 0.5, 1},
		{"small negative half", -0.5, -1},
		{"below half", 1.4999, 1},
		{"above half", 1.5001, 2},
		{"negative below half", -1.4999, -1},
		{"forecast value", 11.8116, 12},
		{"float just below half", 0.49999999999999994, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HalfAwayFromZero(tt.in))
		})
	}
}

func TestHalfAwayFromZero_Symmetric(t *testing.T) {
	for x := -60.0; x <= 60.0; x += 0.125 {
		assert.Equal(t, HalfAwayFromZero(x), -HalfAwayFromZero(-x), "x=%v", x)
	}
}
