package relay

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"

	"telegram-task-relay/internal/model"
)

const (
	DefaultIterations    = 0
	DefaultMaxIterations = 25
	DefaultExitCode      = 0
)

// ExtractRequestID returns the trimmed request ID from either casing, or "".
func ExtractRequestID(body map[string]interface{}) string {
	v, ok := lookup(body, "requestId", "request_id")
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// NormalizeCallback folds a loosely typed callback body into a CallbackResult.
// For every field the camelCase key wins over the snake_case key, then the default applies.
// It never fails: values that cannot be coerced fall back to their defaults.
func NormalizeCallback(body map[string]interface{}) model.CallbackResult {
	return model.CallbackResult{
		Success:       ParseSuccess(get(body, "success", "success")),
		RequestID:     ExtractRequestID(body),
		Repository:    getString(body, "repository", "repository", ""),
		BranchName:    getString(body, "branchName", "branch_name", ""),
		Iterations:    getInt(body, "iterations", "iterations", DefaultIterations),
		MaxIterations: getInt(body, "maxIterations", "max_iterations", DefaultMaxIterations),
		ExitCode:      getInt(body, "exitCode", "exit_code", DefaultExitCode),
		Output:        getString(body, "output", "output", ""),
		Error:         getString(body, "error", "error", ""),
		Duration:      getString(body, "duration", "duration", ""),
		Timestamp:     getString(body, "timestamp", "timestamp", ""),
	}
}

// ParseSuccess maps true, "true", 1 and "1" to true. Everything else, nil and other spellings
// such as "TRUE" or " 1 " included, is false.
func ParseSuccess(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "true" || x == "1"
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 1
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		f, err := cast.ToFloat64E(x)
		return err == nil && f == 1
	default:
		return false
	}
}

func lookup(body map[string]interface{}, camel, snake string) (interface{}, bool) {
	if body == nil {
		return nil, false
	}
	if v, ok := body[camel]; ok && v != nil {
		return v, true
	}
	if v, ok := body[snake]; ok && v != nil {
		return v, true
	}
	return nil, false
}

func get(body map[string]interface{}, camel, snake string) interface{} {
	v, _ := lookup(body, camel, snake)
	return v
}

func getString(body map[string]interface{}, camel, snake, def string) string {
	v, ok := lookup(body, camel, snake)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

func getInt(body map[string]interface{}, camel, snake string, def int) int {
	v, ok := lookup(body, camel, snake)
	if !ok {
		return def
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}
