package bank

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Issue lists the structural defects found for one question (or one topic when Index is -1).
type Issue struct {
	Topic    string   `json:"topic"`
	Index    int      `json:"index"`
	Problems []string `json:"problems"`
}

func (i Issue) Location() string {
	if i.Index < 0 {
		return i.Topic + "[-]"
	}
	return fmt.Sprintf("%s[%d]", i.Topic, i.Index)
}

// Lint inspects a raw question bank document without modifying it.
// It fails only when the document is not a JSON object.
func Lint(data []byte) ([]Issue, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	topics := make([]string, 0, len(doc))
	for topic := range doc {
		if !IsMetaKey(topic) {
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)

	var issues []Issue
	for _, topic := range topics {
		list, ok := doc[topic].([]any)
		if !ok {
			issues = append(issues, Issue{Topic: topic, Index: -1, Problems: []string{"topic is not an array"}})
			continue
		}
		for idx, item := range list {
			if problems := lintQuestion(item); len(problems) > 0 {
				issues = append(issues, Issue{Topic: topic, Index: idx, Problems: problems})
			}
		}
	}
	return issues, nil
}

func lintQuestion(item any) []string {
	q, ok := item.(map[string]any)
	if !ok {
		return []string{"question is not an object"}
	}
	var problems []string

	switch text := q["q"].(type) {
	case nil:
		problems = append(problems, "q is missing")
	case string:
		if len(strings.TrimSpace(text)) < 5 {
			problems = append(problems, "q too short (<5 chars)")
		}
		if unmatchedBackticks(text) {
			problems = append(problems, "q has unmatched backticks")
		}
	default:
		problems = append(problems, fmt.Sprintf("q is not string (type=%s)", jsonType(text)))
	}

	options, optionsOK := q["options"].([]any)
	if !optionsOK {
		problems = append(problems, "options is not an array")
	} else {
		if len(options) != 4 {
			problems = append(problems, fmt.Sprintf("options.length = %d (expected 4)", len(options)))
		}
		seen := map[string][]int{}
		var order []string
		for i, opt := range options {
			s, ok := opt.(string)
			if !ok {
				problems = append(problems, fmt.Sprintf("options[%d] not string (type=%s)", i, jsonType(opt)))
				continue
			}
			if len(strings.TrimSpace(s)) < 2 {
				problems = append(problems, fmt.Sprintf("options[%d] too short", i))
			}
			if unmatchedBackticks(s) {
				problems = append(problems, fmt.Sprintf("options[%d] has unmatched backticks", i))
			}
			key := strings.TrimSpace(s)
			if _, dup := seen[key]; !dup {
				order = append(order, key)
			}
			seen[key] = append(seen[key], i)
		}
		for _, text := range order {
			if idx := seen[text]; len(idx) > 1 {
				problems = append(problems, fmt.Sprintf("duplicate option %q at indices %s", text, joinInts(idx)))
			}
		}
	}

	switch answer := q["answer"].(type) {
	case nil:
		problems = append(problems, "answer missing")
	case float64:
		if !optionsOK {
			problems = append(problems, "cannot validate answer range (options not array)")
		} else if answer < 0 || int(answer) >= len(options) || answer != float64(int(answer)) {
			problems = append(problems, fmt.Sprintf("answer index out of range (%v)", answer))
		}
	default:
		problems = append(problems, fmt.Sprintf("answer not number (type=%s)", jsonType(answer)))
	}

	switch explanation := q["explanation"].(type) {
	case nil:
	case string:
		if len(strings.TrimSpace(explanation)) < 5 {
			problems = append(problems, "explanation too short (<5 chars)")
		}
		if unmatchedBackticks(explanation) {
			problems = append(problems, "explanation has unmatched backticks")
		}
	default:
		problems = append(problems, fmt.Sprintf("explanation not string (type=%s)", jsonType(explanation)))
	}

	return problems
}

func unmatchedBackticks(s string) bool {
	return strings.Count(s, "`")%2 != 0
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any, map[string]any:
		return "object"
	default:
		return "undefined"
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
