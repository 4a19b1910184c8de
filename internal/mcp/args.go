package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// parseStringArg extracts a string argument from an MCP arguments map.
// Returns an error if the argument is required but missing or invalid.
func parseStringArg(argsMap map[string]interface{}, key string, required bool) (string, error) {
	val, ok := argsMap[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}

	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}

	return str, nil
}

// parseBoolArg extracts a boolean argument from an MCP arguments map.
// Returns defaultVal if the argument is missing or invalid.
func parseBoolArg(argsMap map[string]interface{}, key string, defaultVal bool) bool {
	val, ok := argsMap[key]
	if !ok {
		return defaultVal
	}

	switch v := val.(type) {
	case bool:
		return v
	case string:
		// Some clients send every argument as a string.
		switch strings.TrimSpace(v) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return defaultVal
}

// bindArgument decodes argsMap[key] into target using json tags. Clients that send
// structured arguments JSON-encoded inside a string are accepted too. A missing key
// leaves target untouched.
func bindArgument(argsMap map[string]interface{}, key string, target interface{}) error {
	raw, ok := argsMap[key]
	if !ok || raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       jsonStringHook,
		Result:           target,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

// jsonStringHook unpacks JSON-encoded strings destined for slices, maps or structs.
func jsonStringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Slice, reflect.Map, reflect.Struct:
	default:
		return data, nil
	}

	trimmed := strings.TrimSpace(data.(string))
	if !(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) &&
		!(strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) {
		return data, nil
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil, fmt.Errorf("malformed JSON argument: %w", err)
	}
	return decoded, nil
}
