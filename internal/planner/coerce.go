package planner

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var (
	errNotArray  = errors.New("response is not an array")
	errNotObject = errors.New("response is not an object")
)

// stripFences removes a surrounding markdown code fence.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		// drop the info string, e.g. ```json
		trimmed = trimmed[nl+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func parseArray(content string) ([]any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(stripFences(content)), &parsed); err != nil {
		return nil, err
	}
	items, ok := parsed.([]any)
	if !ok {
		return nil, errNotArray
	}
	return items, nil
}

func parseObject(content string) (map[string]any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(stripFences(content)), &parsed); err != nil {
		return nil, err
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// stringField returns obj[key] as a string. Numbers are formatted; anything
// else, including empty strings, yields "".
func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func stringOr(obj map[string]any, key, fallback string) string {
	if value := stringField(obj, key); strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}
