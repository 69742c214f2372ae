package main

import (
	"encoding/json"
	"fmt"
	"os"

	api "pottsmc/pkg/pottsmc"
)

func loadRunRequestFromConfig(path string) (api.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return api.RunRequest{}, err
	}

	var req api.RunRequest
	if v, ok := asString(raw["model"]); ok {
		req.Model = v
	}
	if v, ok := asInt(raw["width"]); ok {
		req.Width = v
	}
	if v, ok := asInt(raw["height"]); ok {
		req.Height = v
	}
	if v, ok := asUint64(raw["field_order"]); ok {
		req.FieldOrder = v
	}
	if v, ok := asInt(raw["steps"]); ok {
		req.Steps = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asFloat64(raw["temperature"]); ok {
		req.Temperature = v
	}
	if v, ok := asString(raw["schedule"]); ok {
		req.Schedule = v
	}
	if v, ok := asBool(raw["testing"]); ok {
		req.Testing = v
	}
	if v, ok := asBool(raw["trace"]); ok {
		req.Trace = v
	}

	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (api.RunRequest, error) {
	if configPath == "" {
		return api.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return api.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func overrideFromFlags(req *api.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "model":
			req.Model = v.(string)
		case "width":
			req.Width = v.(int)
		case "height":
			req.Height = v.(int)
		case "q":
			req.FieldOrder = v.(uint64)
		case "steps":
			req.Steps = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "temperature":
			req.Temperature = v.(float64)
		case "schedule":
			req.Schedule = v.(string)
		case "testing":
			req.Testing = v.(bool)
		case "trace":
			req.Trace = v.(bool)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint64:
		return x, true
	case int:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	case float64:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
