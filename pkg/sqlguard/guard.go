// Package sqlguard screens user-supplied argument values for SQL
// injection patterns with libinjection. All queries are parameterized, so
// a hostile value cannot alter query structure; the guard exists so that
// injection attempts are surfaced and rejected loudly instead of being
// silently bound as an ordinary key that matches nothing.
package sqlguard

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// Detection describes an injection pattern found in an argument value.
type Detection struct {
	Argument    string
	Fingerprint string
}

// CheckArgument runs libinjection over a single argument value. Only
// string values are checked; numbers and booleans cannot carry injection
// payloads. Returns nil when the value is clean.
func CheckArgument(name string, value any) *Detection {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if !isSQLi {
		return nil
	}
	return &Detection{
		Argument:    name,
		Fingerprint: string(fingerprint),
	}
}

// CheckArguments screens every argument value and returns a detection for
// each one that trips the check. Empty result means all values are clean.
func CheckArguments(args map[string]any) []*Detection {
	var detections []*Detection
	for name, value := range args {
		if d := CheckArgument(name, value); d != nil {
			detections = append(detections, d)
		}
	}
	return detections
}
