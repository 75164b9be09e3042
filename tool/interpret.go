//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package tool

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Classification is the success/failure verdict derived from a result and a
// declaration's key sets.
type Classification string

// Classification constants.
const (
	ClassificationSuccess Classification = "success"
	ClassificationFailure Classification = "failure"
)

// maxGenericSummaryLen bounds the generic summary for prompt economy.
const maxGenericSummaryLen = 240

// Interpret classifies raw result fields against the declaration's key sets.
// A truthy failure key wins over any success key, and the absence of an
// explicit success signal is treated as failure.
func Interpret(d *Declaration, fields map[string]any) Classification {
	for _, key := range d.FailureKeys {
		if v, ok := fields[key]; ok && truthy(v) {
			return ClassificationFailure
		}
	}
	for _, key := range d.SuccessKeys {
		if v, ok := fields[key]; ok && truthy(v) {
			return ClassificationSuccess
		}
	}
	return ClassificationFailure
}

var templateFieldRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Summarize renders a short human-readable summary of the result. If the
// declaration carries a summary template, every {field} placeholder is
// substituted; a placeholder naming a missing field falls back to the
// generic summary so a malformed template never aborts the loop.
func Summarize(d *Declaration, fields map[string]any, c Classification) string {
	if d.SummaryTemplate != "" {
		if s, ok := renderTemplate(d.SummaryTemplate, fields); ok {
			return s
		}
	}
	return genericSummary(d, fields, c)
}

func renderTemplate(template string, fields map[string]any) (string, bool) {
	complete := true
	rendered := templateFieldRe.ReplaceAllStringFunc(template, func(placeholder string) string {
		name := placeholder[1 : len(placeholder)-1]
		v, ok := fields[name]
		if !ok {
			complete = false
			return placeholder
		}
		return formatValue(v)
	})
	return rendered, complete
}

func genericSummary(d *Declaration, fields map[string]any, c Classification) string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	sb.WriteString(": ")
	sb.WriteString(string(c))
	if len(fields) > 0 {
		// json.Marshal sorts map keys, keeping summaries deterministic.
		if raw, err := json.Marshal(fields); err == nil {
			sb.WriteString(" ")
			sb.Write(raw)
		}
	}
	s := sb.String()
	if len(s) > maxGenericSummaryLen {
		s = s[:maxGenericSummaryLen-3] + "..."
	}
	return s
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON decoding yields float64 for every number; render integral
		// values without a decimal point.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truthy reports whether a result field value counts as a signal. Nil,
// false, zero numbers, empty strings and empty collections do not.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case json.Number:
		return t.String() != "0" && t.String() != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
