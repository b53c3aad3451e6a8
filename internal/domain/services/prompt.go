package services

import "strings"

// SystemPrompt is sent as the system message of every completion
const SystemPrompt = "You convert user text into a JSON array of slides. Output only valid JSON."

const outlineInstructions = "Convert the following text (markdown or prose) into a JSON object named 'slides'." +
	" The JSON object should look like: { \"slides\": [{\"title\":..., \"content\": [..], \"notes\": \"..\"}, ...] }" +
	" Do NOT add any extra text before/after the JSON. Content array items should be short bullet lines (max 20 words)."

// BuildPrompt returns the user message asking for a JSON-only slide outline.
// Text and guidance are concatenated as-is.
func BuildPrompt(text, guidance string) string {
	var b strings.Builder
	b.WriteString(outlineInstructions)
	b.WriteString("\n")
	if guidance != "" {
		b.WriteString("Use this guidance: ")
		b.WriteString(guidance)
		b.WriteString("\n")
	}
	b.WriteString("\nINPUT:\n")
	b.WriteString(text)
	b.WriteString("\n\nRespond with JSON only.")
	return b.String()
}
