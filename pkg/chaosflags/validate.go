package chaosflags

import (
	"fmt"
	"regexp"
)

// FieldError describes one invalid field within a flag document.
type FieldError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErr(field, format string, args ...interface{}) FieldError {
	return FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateFlagValue applies the per-field rules for mode against raw,
// returning every violation found (never just the first), so a caller
// can report or log them exhaustively.
func ValidateFlagValue(mode Mode, raw map[string]interface{}) []FieldError {
	var errs []FieldError

	enabledRaw, hasEnabled := raw["enabled"]
	if !hasEnabled {
		errs = append(errs, fieldErr("enabled", "is required"))
	} else if _, ok := enabledRaw.(bool); !ok {
		errs = append(errs, fieldErr("enabled", "must be a boolean"))
	}

	if pctRaw, ok := raw["percentage"]; ok {
		pct, isNum := asInt(pctRaw)
		if !isNum {
			errs = append(errs, fieldErr("percentage", "must be an integer"))
		} else if pct < 0 || pct > 100 {
			errs = append(errs, fieldErr("percentage", "must be between 0 and 100"))
		}
	}

	if matchRaw, ok := raw["match"]; ok {
		errs = append(errs, validateMatch(matchRaw)...)
	}

	errs = append(errs, validateModeSpecific(mode, raw)...)

	return errs
}

func validateMatch(raw interface{}) []FieldError {
	var errs []FieldError
	list, ok := raw.([]interface{})
	if !ok {
		return []FieldError{fieldErr("match", "must be a list")}
	}
	for i, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			errs = append(errs, fieldErr(fmt.Sprintf("match[%d]", i), "must be an object"))
			continue
		}
		path, hasPath := obj["path"].(string)
		if !hasPath || path == "" {
			errs = append(errs, fieldErr(fmt.Sprintf("match[%d].path", i), "is required and must be a non-empty string"))
		}
		op := OpEq
		if opRaw, ok := obj["operator"]; ok {
			opStr, ok := opRaw.(string)
			if !ok {
				errs = append(errs, fieldErr(fmt.Sprintf("match[%d].operator", i), "must be a string"))
			} else {
				op = Operator(opStr)
				switch op {
				case OpEq, OpExists, OpStartsWith, OpRegex:
				default:
					errs = append(errs, fieldErr(fmt.Sprintf("match[%d].operator", i), "must be one of eq, exists, startsWith, regex"))
				}
			}
		}
		valueRaw, hasValue := obj["value"]
		if op != OpExists {
			if !hasValue {
				errs = append(errs, fieldErr(fmt.Sprintf("match[%d].value", i), "is required unless operator is exists"))
			} else if valueStr, ok := valueRaw.(string); !ok {
				errs = append(errs, fieldErr(fmt.Sprintf("match[%d].value", i), "must be a string"))
			} else if op == OpRegex {
				if _, err := regexp.Compile(valueStr); err != nil {
					errs = append(errs, fieldErr(fmt.Sprintf("match[%d].value", i), "does not compile as a regex: %v", err))
				} else if err := checkReDoS(valueStr); err != nil {
					errs = append(errs, fieldErr(fmt.Sprintf("match[%d].value", i), "%v", err))
				}
			}
		}
	}
	return errs
}

func validateModeSpecific(mode Mode, raw map[string]interface{}) []FieldError {
	var errs []FieldError
	switch mode {
	case ModeLatency:
		min, hasMin := asInt(raw["min_latency"])
		max, hasMax := asInt(raw["max_latency"])
		if _, present := raw["min_latency"]; present && !hasMin {
			errs = append(errs, fieldErr("min_latency", "must be an integer"))
		} else if hasMin && min < 0 {
			errs = append(errs, fieldErr("min_latency", "must be non-negative"))
		}
		if _, present := raw["max_latency"]; present && !hasMax {
			errs = append(errs, fieldErr("max_latency", "must be an integer"))
		} else if hasMax && max < 0 {
			errs = append(errs, fieldErr("max_latency", "must be non-negative"))
		}
		if hasMin && hasMax && min > max {
			errs = append(errs, fieldErr("min_latency", "must be less than or equal to max_latency"))
		}
	case ModeTimeout:
		if v, present := raw["timeout_buffer_ms"]; present {
			n, ok := asInt(v)
			if !ok {
				errs = append(errs, fieldErr("timeout_buffer_ms", "must be an integer"))
			} else if n < 0 {
				errs = append(errs, fieldErr("timeout_buffer_ms", "must be non-negative"))
			}
		}
	case ModeException:
		if v, present := raw["exception_msg"]; present {
			if _, ok := v.(string); !ok {
				errs = append(errs, fieldErr("exception_msg", "must be a string"))
			}
		}
	case ModeStatusCode:
		if v, present := raw["status_code"]; present {
			n, ok := asInt(v)
			if !ok {
				errs = append(errs, fieldErr("status_code", "must be an integer"))
			} else if n < 100 || n > 599 {
				errs = append(errs, fieldErr("status_code", "must be between 100 and 599"))
			}
		}
	case ModeDiskSpace:
		v, present := raw["disk_space"]
		if !present {
			errs = append(errs, fieldErr("disk_space", "is required"))
			break
		}
		n, ok := asInt(v)
		if !ok {
			errs = append(errs, fieldErr("disk_space", "must be an integer"))
		} else if n < 1 || n > 10240 {
			errs = append(errs, fieldErr("disk_space", "must be between 1 and 10240"))
		}
	case ModeDenylist:
		v, present := raw["deny_list"]
		if !present {
			errs = append(errs, fieldErr("deny_list", "is required"))
			break
		}
		list, ok := v.([]interface{})
		if !ok {
			errs = append(errs, fieldErr("deny_list", "must be a list of strings"))
			break
		}
		for i, item := range list {
			pattern, ok := item.(string)
			if !ok {
				errs = append(errs, fieldErr(fmt.Sprintf("deny_list[%d]", i), "must be a string"))
				continue
			}
			if _, err := regexp.Compile(pattern); err != nil {
				errs = append(errs, fieldErr(fmt.Sprintf("deny_list[%d]", i), "does not compile as a regex: %v", err))
				continue
			}
			if err := checkReDoS(pattern); err != nil {
				errs = append(errs, fieldErr(fmt.Sprintf("deny_list[%d]", i), "%v", err))
			}
		}
	case ModeCorruption:
		if v, present := raw["body"]; present && v != nil {
			if _, ok := v.(string); !ok {
				errs = append(errs, fieldErr("body", "must be a string or null"))
			}
		}
	}
	return errs
}

// asInt accepts both Go int-typed values and the float64 that JSON
// unmarshaling into interface{} always produces for numbers.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
