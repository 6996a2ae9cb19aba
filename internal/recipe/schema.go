package recipe

import "github.com/google/generative-ai-go/genai"

// Schema is the structured-output schema the model must fill for one recipe.
func Schema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":          {Type: genai.TypeString, Description: "A unique ID for the recipe, can be a slug of the name."},
			"name":        {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
			"ingredients": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"instructions": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"calories": {Type: genai.TypeNumber},
			"protein":  {Type: genai.TypeNumber},
			"carbs":    {Type: genai.TypeNumber},
			"fat":      {Type: genai.TypeNumber},
			"imageUrl": {Type: genai.TypeString, Description: "A placeholder image URL from picsum.photos."},
		},
		Required: []string{"id", "name", "description", "ingredients", "instructions", "calories", "protein", "carbs", "fat", "imageUrl"},
	}
}
