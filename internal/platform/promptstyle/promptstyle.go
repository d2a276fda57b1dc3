package promptstyle

import "strings"

const marker = "HOTFLOW_PROMPT_STYLE_V1"

// ApplySystem prepends a short guidance block to a system prompt. Prompts that
// already carry the block are returned unchanged.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou write marketing copy for Chinese e-commerce listings.")
	b.WriteString("\nUse only the product facts given by the user; never invent prices, sales figures or awards.")
	b.WriteString("\nWrite in Simplified Chinese unless told otherwise.")
	if mode == "json" {
		b.WriteString("\nReturn a single JSON object and nothing else: no markdown fences, no commentary.")
	} else {
		b.WriteString("\nReturn only the requested copy.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}
