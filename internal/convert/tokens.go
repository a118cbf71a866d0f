package convert

import "strings"

// charsPerToken is a conservative estimate for technical content.
const charsPerToken = 5

// EstimateTokens approximates the token count of text. Rough by design;
// indexing cost estimates only need order-of-magnitude accuracy.
func EstimateTokens(text string) int {
	return len(text) / charsPerToken
}

// SplitDocument splits text into chunks of at most maxTokens (estimated),
// breaking on paragraph boundaries and carrying roughly overlap tokens of
// trailing paragraphs into the next chunk for context continuity. Text that
// fits in one chunk is returned unchanged.
func SplitDocument(text string, maxTokens, overlap int) []string {
	if EstimateTokens(text) <= maxTokens {
		return []string{text}
	}

	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current []string
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		if currentTokens+paraTokens > maxTokens && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))

			// Seed the next chunk with trailing paragraphs up to the overlap.
			var carried []string
			carriedTokens := 0
			for i := len(current) - 1; i >= 0; i-- {
				pt := EstimateTokens(current[i])
				if carriedTokens+pt > overlap {
					break
				}
				carried = append([]string{current[i]}, carried...)
				carriedTokens += pt
			}
			current = carried
			currentTokens = carriedTokens
		}

		current = append(current, para)
		currentTokens += paraTokens
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}

	return chunks
}
