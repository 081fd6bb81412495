package genai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// MealAnalysis is the structured result of a meal-photo analysis.
type MealAnalysis struct {
	Foods          []types.FoodItem    `json:"foods"`
	TotalNutrition types.NutritionInfo `json:"totalNutrition"`
}

const mealPrompt = `Analyze the food in this image for a %s. %s
Identify every distinct food item and estimate its nutrition.
Respond with JSON only, matching exactly:
{"foods":[{"name":string,"nutrition":{"calories":number,"protein":number,"carbs":number,"fat":number}}],"totalNutrition":{"calories":number,"protein":number,"carbs":number,"fat":number}}`

// AnalyzeMeal sends the photo plus the declared meal type (and optional
// free-text detail) and returns the identified foods with their nutrition.
// Empty or unparsable output maps to the content-safety bucket so the UI can
// say "only food images are supported here".
func (c *Client) AnalyzeMeal(ctx context.Context, image []byte, mimeType, mealType, note string) (*MealAnalysis, error) {
	detail := ""
	if note != "" {
		detail = fmt.Sprintf("Additional detail from the user: %s.", note)
	}

	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
				{Text: fmt.Sprintf(mealPrompt, mealType, detail)},
			},
		}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	resp, err := c.generate(ctx, "meal analysis", req)
	if err != nil {
		return nil, err
	}

	var analysis MealAnalysis
	if err := parseStructured("meal analysis", resp.text(), &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}
