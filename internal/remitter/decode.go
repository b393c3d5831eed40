package remitter

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Azahorscak/remitter-tui/internal/errs"
)

// Decode parses a response body into a Profile.
//
// The body must be a JSON object; anything else (including null) is a
// *errs.DecodeError. Missing fields and falsy values (null, false, 0) become
// "". Other numbers are normalised (9.87654321e9 reads "9876543210", 1.50
// reads "1.5"), true reads "true", and nested objects and arrays become "".
func Decode(body []byte) (Profile, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Profile{}, errs.NewDecodeError("response is not a remitter object", nil)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Profile{}, errs.NewDecodeError("malformed remitter object", err)
	}

	var p Profile
	for _, f := range Fields() {
		p = p.Set(f, scalarText(raw[f.Key()]))
	}
	return p, nil
}

func scalarText(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	case 'f':
		return ""
	case 't':
		return "true"
	default:
		n, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return string(v)
		}
		if n == 0 {
			return ""
		}
		return numberText(n)
	}
}

// numberText renders n the way a browser's String(n) does: plain decimal
// digits for magnitudes in [1e-6, 1e21), shortest exponent form otherwise.
func numberText(n float64) string {
	if abs := math.Abs(n); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	s := strconv.FormatFloat(n, 'e', -1, 64)
	s = strings.Replace(s, "e+0", "e+", 1)
	return strings.Replace(s, "e-0", "e-", 1)
}
