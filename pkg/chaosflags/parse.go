package chaosflags

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

// legacyKeys are top-level keys unique to the format this tool's
// predecessor emitted. Their presence means the document predates the
// current flag model and cannot be parsed.
var legacyKeys = []string{"isEnabled", "failureMode"}

// ParseFlags decodes a raw configuration document into a Configuration,
// dropping (with a logged warning) any flag whose value fails
// validation and ignoring any key outside the closed mode set. It never
// returns an error: a document that is entirely unusable simply yields
// an empty Configuration, matching the loader's fail-closed contract.
//
// Both backends this tool ships with (AppConfig, Parameter Store) serve
// JSON, so JSON is tried first. A document that fails to parse as JSON
// is retried as YAML, so a hand-authored local override file can use
// either format.
func ParseFlags(doc []byte, log *chaoslog.Logger) Configuration {
	var raw map[string]interface{}
	if jsonErr := json.Unmarshal(doc, &raw); jsonErr == nil {
		return ParseFlagsMap(raw, log)
	}

	yamlRaw, yamlErr := parseYAMLDocument(doc)
	if yamlErr != nil {
		log.Warn(chaoslog.ActionConfig, "configuration document is neither valid JSON nor valid YAML", zap.Error(yamlErr))
		return Empty()
	}
	return ParseFlagsMap(yamlRaw, log)
}

// parseYAMLDocument decodes a YAML document into the same
// map[string]interface{} shape encoding/json produces, so it can feed
// ParseFlagsMap unchanged. yaml.v2 decodes mappings as
// map[interface{}]interface{}; normalizeYAMLValue converts those (and
// any nested ones) to string-keyed maps.
func parseYAMLDocument(doc []byte) (map[string]interface{}, error) {
	var raw map[interface{}]interface{}
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, err
	}
	return normalizeYAMLMap(raw), nil
}

func normalizeYAMLMap(in map[interface{}]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[fmt.Sprint(k)] = normalizeYAMLValue(v)
	}
	return out
}

func normalizeYAMLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		return normalizeYAMLMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeYAMLValue(item)
		}
		return out
	default:
		return val
	}
}

// ParseFlagsMap is the map-based core of ParseFlags, exposed separately
// so callers that already hold a decoded document (e.g. from YAML) can
// skip the JSON round trip.
func ParseFlagsMap(raw map[string]interface{}, log *chaoslog.Logger) Configuration {
	for _, key := range legacyKeys {
		if _, present := raw[key]; present {
			log.Warn(chaoslog.ActionConfig,
				"configuration uses the legacy flag format and cannot be parsed; see migration notes",
				zap.String("legacy_key", key))
			return Empty()
		}
	}

	cfg := Empty()
	for _, mode := range AllModes {
		val, present := raw[string(mode)]
		if !present {
			continue
		}
		obj, ok := val.(map[string]interface{})
		if !ok {
			log.Warn(chaoslog.ActionConfig, "flag value is not an object; skipping", zap.String("mode", string(mode)))
			continue
		}

		fieldErrs := ValidateFlagValue(mode, obj)
		if len(fieldErrs) > 0 {
			for _, fe := range fieldErrs {
				log.Warn(chaoslog.ActionConfig, "dropping invalid flag field",
					zap.String("mode", string(mode)), zap.String("field", fe.Field), zap.String("reason", fe.Message))
			}
			log.Warn(chaoslog.ActionConfig, "dropping flag due to validation errors",
				zap.String("mode", string(mode)), zap.Int("error_count", len(fieldErrs)))
			continue
		}

		flag, err := buildFlag(mode, obj)
		if err != nil {
			log.Warn(chaoslog.ActionConfig, "failed to build flag after validation", zap.String("mode", string(mode)), zap.Error(err))
			continue
		}
		cfg[mode] = flag
	}
	return cfg
}

func buildFlag(mode Mode, obj map[string]interface{}) (Flag, error) {
	f := Flag{Mode: mode}
	if enabled, ok := obj["enabled"].(bool); ok {
		f.Enabled = enabled
	}
	f.Percentage = 100
	if pctRaw, ok := obj["percentage"]; ok {
		if pct, ok := asInt(pctRaw); ok {
			f.Percentage = ClampPercentage(pct)
		}
	}
	if matchRaw, ok := obj["match"].([]interface{}); ok {
		for _, item := range matchRaw {
			mObj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			cond := MatchCondition{Operator: OpEq}
			if path, ok := mObj["path"].(string); ok {
				cond.Path = path
			}
			if opStr, ok := mObj["operator"].(string); ok && opStr != "" {
				cond.Operator = Operator(opStr)
			}
			if valStr, ok := mObj["value"].(string); ok {
				v := valStr
				cond.Value = &v
			}
			f.Match = append(f.Match, cond)
		}
	}

	switch mode {
	case ModeLatency:
		lf := &LatencyFlag{}
		if v, ok := asInt(obj["min_latency"]); ok {
			lf.MinLatencyMs = v
		}
		if v, ok := asInt(obj["max_latency"]); ok {
			lf.MaxLatencyMs = v
		}
		f.Latency = lf
	case ModeTimeout:
		tf := &TimeoutFlag{}
		if v, ok := asInt(obj["timeout_buffer_ms"]); ok {
			tf.TimeoutBufferMs = v
		}
		f.Timeout = tf
	case ModeException:
		ef := &ExceptionFlag{ExceptionMsg: "Injected exception"}
		if v, ok := obj["exception_msg"].(string); ok && v != "" {
			ef.ExceptionMsg = v
		}
		f.Exception = ef
	case ModeStatusCode:
		sf := &StatusCodeFlag{StatusCode: 500}
		if v, ok := asInt(obj["status_code"]); ok {
			sf.StatusCode = v
		}
		f.StatusCode = sf
	case ModeDiskSpace:
		v, ok := asInt(obj["disk_space"])
		if !ok {
			return f, errors.New("disk_space missing after validation")
		}
		f.DiskSpace = &DiskSpaceFlag{DiskSpaceMB: v}
	case ModeDenylist:
		list, _ := obj["deny_list"].([]interface{})
		df := &DenylistFlag{}
		for _, item := range list {
			if s, ok := item.(string); ok {
				df.Patterns = append(df.Patterns, s)
			}
		}
		f.Denylist = df
	case ModeCorruption:
		cf := &CorruptionFlag{}
		if v, ok := obj["body"].(string); ok {
			cf.Body = &v
		}
		f.Corruption = cf
	}
	return f, nil
}
