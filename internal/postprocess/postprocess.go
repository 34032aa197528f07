// Package postprocess removes common LLM artifacts from a model reply so the
// remaining text can be decoded as a single JSON object.
//
// It is applied to the raw completion text returned by every judge provider
// before schema validation.
package postprocess

import (
	"regexp"
	"strings"
)

// ExtractJSON cleans text in three phases and returns the trimmed result:
//  1. Thinking / reasoning block removal
//  2. Markdown code fence removal
//  3. Cut to the outermost JSON object
func ExtractJSON(text string) string {
	text = removeThinkingBlocks(text)
	text = removeCodeFences(text)
	text = outermostObject(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
// Flags: i = case-insensitive, s = dot matches newline.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: code fences ---

// fenceRe matches a reply wrapped in ``` or ```json fences.
var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n?(.*?)\\s*```$")

func removeCodeFences(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// --- Phase 3: outermost object ---

// outermostObject drops prose around the first '{' and the last '}'.
// Text without a complete pair, or whose object sits inside an array or a
// list (a '[' or ',' right before it, a ']' or ',' right after it), is
// returned unchanged so the decoder rejects it.
func outermostObject(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return text
	}

	before := strings.TrimRight(text[:start], " \t\r\n")
	after := strings.TrimLeft(text[end+1:], " \t\r\n")
	if strings.HasSuffix(before, "[") || strings.HasSuffix(before, ",") ||
		strings.HasPrefix(after, "]") || strings.HasPrefix(after, ",") {
		return text
	}
	return text[start : end+1]
}
