package aiquiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var ErrMalformedGeneration = errors.New("malformed generation output")

var (
	optionLine  = regexp.MustCompile(`Option \d+:\s*(.+)`)
	correctLine = regexp.MustCompile(`(?i)Correct:\s*(\d+)`)
	listMarker  = regexp.MustCompile(`^\s*(?:(?i:option\s*\d+\s*:)|[A-Da-d][\)\.]|\d+[\.\)]|[-*•])\s*`)
	codeFence   = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// ParseStrictOptions accepts only the labeled "Option N:" format with a "Correct: N" line.
func ParseStrictOptions(text string) ParseResult {
	matches := optionLine.FindAllStringSubmatch(text, -1)
	correct := correctLine.FindStringSubmatch(text)
	if len(matches) < OptionCount || correct == nil {
		return ParseResult{Stage: StageNone}
	}

	var d Draft
	for i := 0; i < OptionCount; i++ {
		d.Options[i] = strings.TrimSpace(matches[i][1])
		if d.Options[i] == "" {
			return ParseResult{Stage: StageNone}
		}
	}

	n, err := strconv.Atoi(correct[1])
	if err != nil {
		// Only overflow can fail here; the pattern guarantees digits.
		n = math.MaxInt
	}
	d.CorrectOption = clampIndex(n - 1)

	return ParseResult{Draft: d, OK: true, Stage: StageStrict}
}

// ParseFallbackOptions takes the first four usable lines, stripped of list markers,
// and marks the first one correct.
func ParseFallbackOptions(text string) ParseResult {
	var d Draft
	found := 0
	for _, line := range strings.Split(text, "\n") {
		if found == OptionCount {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(strings.ToLower(line), "question:") {
			continue
		}
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		d.Options[found] = line
		found++
	}
	if found < OptionCount {
		return ParseResult{Stage: StageNone}
	}
	return ParseResult{Draft: d, OK: true, Stage: StageFallback}
}

// ParseOptions runs the strict stage, then the fallback stage.
func ParseOptions(text string) ParseResult {
	if res := ParseStrictOptions(text); res.OK {
		return res
	}
	return ParseFallbackOptions(text)
}

// DecodeQuizJSON parses a JSON array, tolerating a surrounding markdown code fence.
// Anything else is ErrMalformedGeneration.
func DecodeQuizJSON(text string) ([]any, error) {
	clean := strings.TrimSpace(text)
	if m := codeFence.FindStringSubmatch(clean); m != nil {
		clean = m[1]
	}

	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeneration, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrMalformedGeneration)
	}

	elements, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON array, got %T", ErrMalformedGeneration, v)
	}
	return elements, nil
}

// SanitizeDrafts validates each element on its own and returns exactly n drafts,
// padding with empty drafts or truncating as needed.
func SanitizeDrafts(elements []any, n int) []Draft {
	if n < 0 {
		n = 0
	}
	out := make([]Draft, 0, n)
	for _, el := range elements {
		if len(out) == n {
			break
		}
		out = append(out, sanitizeDraft(el))
	}
	for len(out) < n {
		out = append(out, Draft{})
	}
	return out
}

func sanitizeDraft(el any) Draft {
	var d Draft
	obj, ok := el.(map[string]any)
	if !ok {
		return d
	}

	if text, ok := obj["text"].(string); ok {
		d.Text = strings.TrimSpace(text)
	}

	if opts, ok := obj["options"].([]any); ok && len(opts) == OptionCount {
		for i, o := range opts {
			d.Options[i] = strings.TrimSpace(coerceString(o))
		}
	}

	if num, ok := obj["correct_option"].(json.Number); ok {
		if f, err := num.Float64(); err == nil && f == math.Trunc(f) && f >= 0 && f < OptionCount {
			d.CorrectOption = int(f)
		}
	}
	return d
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(buf.String())
}
