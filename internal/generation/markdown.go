package generation

import (
	"fmt"
	"regexp"
	"strings"
)

// defaultFencePattern matches any single-word language tag after the
// opening fence when the caller does not care which language was used.
const defaultFencePattern = `\w*`

// ExtractCodeBlock strips a Markdown triple-backtick code fence from an LLM
// response and returns the interior content, trimmed.
//
// languageTagPattern restricts which language tag the opening fence may
// carry; it accepts regular expression alternations such as "sql(ite)?" and
// matches case-insensitively. An empty pattern accepts any word tag.
//
// LLM responses are frequently truncated, so a missing closing fence is
// tolerated. Text without any fence is returned as-is, modulo trimming.
func ExtractCodeBlock(text, languageTagPattern string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	tag := languageTagPattern
	if tag == "" {
		tag = defaultFencePattern
	}

	// (?is): case-insensitive tag matching, dot spans newlines. The closing
	// fence is optional so that truncated responses still yield content.
	pattern := fmt.Sprintf("(?is)^```(?:%s)?\n?(.*?)(?:```)?$", tag)
	re, err := regexp.Compile(pattern)
	if err != nil {
		// An invalid caller-supplied tag pattern degrades to the identity
		// behavior rather than failing the whole generation pipeline.
		return text
	}

	match := re.FindStringSubmatch(text)
	if match == nil {
		return text
	}
	return strings.TrimSpace(match[1])
}
