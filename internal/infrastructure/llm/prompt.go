package llm

import "fmt"

const extractionInstructions = `Analyze the user request for a laptop and extract the specifications.
Focus on: category, budget (min_price, max_price), performance level (high, moderate, basic),
brand, RAM in GB, storage size in GB, screen size (as a number like 13, 15, 17), screen resolution,
processor (e.g. "Intel Core i7", "AMD Ryzen 5", "i9-13900H") and graphics (e.g. "NVIDIA RTX 4070", "AMD Radeon", "Intel Iris Xe", "Intel UHD").

For RAM, storage and screen size, also determine whether the user gave a minimum ("X or more", "at least X").
Set ram_is_minimum, storage_is_minimum and screen_size_is_minimum to true when a minimum is given, otherwise false or null.

Only use these categories: "multimedia", "engineering", "logic circuit", "data science", "machine learning",
"content creation", "video editing", "gaming", "business", "creator", "student", "standard", "study", "work".

Return the specifications ONLY as a JSON object. Use null for anything not mentioned.
Example:
{
  "category": ["Gaming"],
  "min_price": null,
  "max_price": null,
  "performance": null,
  "brand": ["MSI"],
  "ram": 64,
  "ram_is_minimum": false,
  "storage_gb": 1024,
  "storage_is_minimum": true,
  "screen_size_value": 15,
  "screen_size_is_minimum": true,
  "resolution": ["4K"],
  "processor": ["Intel Core i9"],
  "graphics": ["NVIDIA RTX"]
}`

// UserPrompt wraps the raw user request.
func UserPrompt(message string) string {
	return fmt.Sprintf("User request: %q", message)
}

// Instructions returns the fixed system prompt.
func Instructions() string {
	return extractionInstructions
}
