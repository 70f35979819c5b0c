package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBMI(t *testing.T) {
	assert.Equal(t, 22.9, BMI(70, 175))
	assert.Equal(t, 0.0, BMI(0, 175), "missing weight")
	assert.Equal(t, 0.0, BMI(70, 0), "missing height")
}

func TestBMIClass(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{0, BMINoData},
		{17.9, BMIUnderweight},
		{18.5, BMIHealthy},
		{24.8, BMIHealthy},
		{24.9, BMIOverweight},
		{29.9, BMIObese},
		{35, BMIObese},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BMIClass(tt.bmi), "bmi %v", tt.bmi)
	}
}

func TestOneRepMax(t *testing.T) {
	assert.Equal(t, 116.7, OneRepMax(100, 5))
	assert.Equal(t, 103.3, OneRepMax(100, 1))
	assert.Zero(t, OneRepMax(100, 0))
	assert.Zero(t, OneRepMax(0, 5))
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 87.5, PercentOf(116.7, 75))
	assert.Zero(t, PercentOf(0, 75))
	assert.Zero(t, PercentOf(100, 0))
}
