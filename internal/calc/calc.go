// Package calc holds the body-metric and strength formulas.
package calc

import "math"

// BMI classification labels.
const (
	BMINoData      = "No data"
	BMIUnderweight = "Underweight"
	BMIHealthy     = "Healthy"
	BMIOverweight  = "Overweight"
	BMIObese       = "Obese"
)

// BMI returns the body-mass index rounded to one decimal, or 0 when either
// input is missing.
func BMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return round1(weightKg / (m * m))
}

// BMIClass labels a BMI value.
func BMIClass(bmi float64) string {
	switch {
	case bmi <= 0:
		return BMINoData
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 24.9:
		return BMIHealthy
	case bmi < 29.9:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// OneRepMax estimates a one-rep max with the Epley formula.
func OneRepMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	return round1(weight * (1 + float64(reps)/30))
}

// PercentOf returns pct percent of oneRM.
func PercentOf(oneRM, pct float64) float64 {
	if oneRM <= 0 || pct <= 0 {
		return 0
	}
	return round1(oneRM * pct / 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
