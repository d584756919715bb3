package matching

import (
	"strings"

	"gotasks/domain/mapping"
)

type patternRule struct {
	field      mapping.TargetField
	confidence int
	matches    func(name string) bool
}

func containsAny(name string, parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func isTemporal(name string) bool {
	return containsAny(name, "date", "time", "when")
}

// patternRules are evaluated in order against the folded column name
var patternRules = []patternRule{
	{mapping.FieldDueDate, 70, func(n string) bool { return isTemporal(n) && containsAny(n, "due", "deadline") }},
	{mapping.FieldStartTime, 70, func(n string) bool { return isTemporal(n) && containsAny(n, "start") }},
	{mapping.FieldEndTime, 70, func(n string) bool { return isTemporal(n) && containsAny(n, "end") }},
	{mapping.FieldCompleted, 65, func(n string) bool {
		return containsAny(n, "done", "complete", "check") || n == "x" || n == "✓"
	}},
	{mapping.FieldStatus, 75, func(n string) bool { return containsAny(n, "status", "state", "progress") }},
	{mapping.FieldPriority, 75, func(n string) bool { return containsAny(n, "priority", "importance", "urgent") }},
}

func detectByPattern(folded string) (mapping.TargetField, int, bool) {
	for _, rule := range patternRules {
		if rule.matches(folded) {
			return rule.field, rule.confidence, true
		}
	}
	return mapping.FieldNone, 0, false
}
