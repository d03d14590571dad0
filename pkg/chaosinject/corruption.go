package chaosinject

import (
	"encoding/json"
	"reflect"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

const replacementChar = "�"

// Corrupt applies a corruption flag to the handler's result, following
// the tagged-variant treatment noted for this mode: the result is
// round-tripped through JSON to decide whether it carries a "body"
// field (HasBody) or not (NoBody), and the replace/mangle behavior
// branches accordingly. On any failure to decode or re-encode the
// result, the original value is returned unchanged.
//
// replacement is nil for the mangle path (replace the body with a
// random truncation of itself) and non-nil for the replace path
// (substitute the given string outright).
func Corrupt(replacement *string, result interface{}, deps Deps) interface{} {
	raw, err := json.Marshal(result)
	if err != nil {
		deps.log().Warn(chaoslog.ActionInject, "could not encode response for corruption; returning unchanged", zap.Error(err))
		return result
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		deps.log().Warn(chaoslog.ActionInject, "could not decode response for corruption; returning unchanged", zap.Error(err))
		return result
	}

	obj, isObject := decoded.(map[string]interface{})
	if !isObject {
		if replacement == nil {
			deps.log().Warn(chaoslog.ActionInject, "response is not a JSON object; nothing to mangle")
			return result
		}
		return remarshal(*replacement, result, deps)
	}

	bodyVal, hasBody := obj["body"]

	if replacement != nil {
		if !hasBody {
			deps.log().Warn(chaoslog.ActionInject, "response has no body field; wrapping replacement in one")
			obj = map[string]interface{}{"body": *replacement}
		} else {
			obj["body"] = *replacement
		}
		deps.log().Info(chaoslog.ActionInject, "injecting corruption", zap.String("mode", "replace"))
		return remarshal(obj, result, deps)
	}

	if !hasBody {
		deps.log().Warn(chaoslog.ActionInject, "response has no string body field to mangle; returning unchanged")
		return result
	}
	bodyStr, ok := bodyVal.(string)
	if !ok {
		deps.log().Warn(chaoslog.ActionInject, "response has no string body field to mangle; returning unchanged")
		return result
	}
	obj["body"] = mangleString(bodyStr, deps)
	deps.log().Info(chaoslog.ActionInject, "injecting corruption", zap.String("mode", "mangle"))
	return remarshal(obj, result, deps)
}

// mangleString truncates s at a random point between 30% and 80% of its
// length, snapped back to the nearest rune boundary, and appends
// exactly three Unicode replacement characters.
func mangleString(s string, deps Deps) string {
	fraction := 0.3 + deps.rng().Float64()*0.5
	cut := int(float64(len(s)) * fraction)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + replacementChar + replacementChar + replacementChar
}

// remarshal encodes v as JSON and decodes it into a new value shaped
// like original, so the corrupted result keeps original's concrete Go
// type. Falls back to returning original unchanged if either step
// fails.
func remarshal(v interface{}, original interface{}, deps Deps) interface{} {
	encoded, err := json.Marshal(v)
	if err != nil {
		deps.log().Warn(chaoslog.ActionInject, "could not re-encode corrupted response; returning unchanged", zap.Error(err))
		return original
	}

	origType := reflect.TypeOf(original)
	if origType == nil {
		var generic interface{}
		if err := json.Unmarshal(encoded, &generic); err != nil {
			return original
		}
		return generic
	}

	target := reflect.New(origType)
	if err := json.Unmarshal(encoded, target.Interface()); err != nil {
		deps.log().Warn(chaoslog.ActionInject, "could not decode corrupted response into original shape; returning unchanged", zap.Error(err))
		return original
	}
	return target.Elem().Interface()
}
