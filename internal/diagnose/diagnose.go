// Package diagnose turns a log line into structured remediation guidance
// using an ordered table of substring signatures.
package diagnose

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Diagnosis explains a fault and how to address it.
type Diagnosis struct {
	// Rule names the signature that matched, or FallbackName.
	Rule        string   `json:"rule"`
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Cause       string   `json:"cause"`
	Impact      string   `json:"impact"`
	Steps       []string `json:"steps"`
}

// Input is the part of a log entry the classifier looks at.
type Input struct {
	Message string
	Details any
}

// Diagnose classifies in. It always returns a diagnosis; entries that match
// no signature get the generic fallback.
func Diagnose(in Input) Diagnosis {
	text := searchText(in)
	for _, r := range rules {
		for _, sig := range r.signatures {
			if strings.Contains(text, sig) {
				return r.result.withRule(r.name)
			}
		}
	}
	return Fallback()
}

// Fallback returns the diagnosis used when no rule matches.
func Fallback() Diagnosis {
	return fallback.withRule(FallbackName)
}

// Rules returns the rule names in evaluation order.
func Rules() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

// Qualifies reports whether entries at level are eligible for diagnosis.
// Only ERROR and WARN entries are.
func Qualifies(level string) bool {
	switch strings.ToUpper(level) {
	case "ERROR", "WARN":
		return true
	}
	return false
}

// withRule returns a copy of d that does not share its Steps slice with the
// table.
func (d Diagnosis) withRule(name string) Diagnosis {
	d.Rule = name
	d.Steps = append([]string(nil), d.Steps...)
	return d
}

func searchText(in Input) string {
	return strings.ToLower(in.Message) + " " + strings.ToLower(flatten(in.Details))
}

func flatten(details any) string {
	if details == nil {
		return ""
	}
	switch v := details.(type) {
	case json.RawMessage:
		return string(v)
	case []byte:
		return string(v)
	}
	b, err := json.Marshal(details)
	if err != nil {
		return fmt.Sprint(details)
	}
	return string(b)
}
