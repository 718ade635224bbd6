package utils

import (
	"errors"
	"math"
)

type BMIResult struct {
	BMI             float64  `json:"bmi"`
	Category        string   `json:"category"`
	Recommendations []string `json:"recommendations"`
}

// CalculateBMI expects weight in kilograms and height in centimeters.
// Pure computation, no I/O; the advisory strings are fixed per category.
func CalculateBMI(weightKg, heightCm float64) (*BMIResult, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return nil, errors.New("height and weight must be positive")
	}
	// Sanity checks to avoid garbage input
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return nil, errors.New("height/weight out of plausible range")
	}

	h := heightCm / 100.0 // to meters
	bmi := weightKg / (h * h)
	category, recommendations := bmiCategory(bmi)

	return &BMIResult{
		BMI:             math.Round(bmi*10) / 10,
		Category:        category,
		Recommendations: recommendations,
	}, nil
}

func bmiCategory(bmi float64) (string, []string) {
	switch {
	case bmi < 18.5:
		return "underweight", []string{
			"Consider consulting with a nutritionist for healthy weight gain strategies",
			"Focus on nutrient-dense, calorie-rich foods",
			"Include protein-rich meals in your diet",
		}
	case bmi < 25.0:
		return "normal", []string{
			"Maintain your current healthy weight with balanced nutrition",
			"Continue regular physical activity",
			"Focus on variety in your meal choices",
		}
	case bmi < 30.0:
		return "overweight", []string{
			"Consider portion control and balanced meal planning",
			"Increase physical activity and choose lower-calorie options",
			"Focus on vegetables, lean proteins, and whole grains",
		}
	default:
		return "obese", []string{
			"Consult with healthcare professionals for a comprehensive weight management plan",
			"Focus on sustainable lifestyle changes",
			"Prioritize nutrient-dense, lower-calorie meal options",
		}
	}
}
