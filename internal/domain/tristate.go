package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tri is a three-valued flag. The zero value is Unknown, so a record that
// never mentions a feature is never treated as having it.
type Tri int8

const (
	Unknown Tri = iota
	Yes
	No
)

func TriOf(b bool) Tri {
	if b {
		return Yes
	}
	return No
}

// TriFromPtr maps nil to Unknown.
func TriFromPtr(b *bool) Tri {
	if b == nil {
		return Unknown
	}
	return TriOf(*b)
}

func (t Tri) Known() bool { return t == Yes || t == No }

// Ptr is the inverse of TriFromPtr (nil for Unknown).
func (t Tri) Ptr() *bool {
	switch t {
	case Yes:
		v := true
		return &v
	case No:
		v := false
		return &v
	}
	return nil
}

func (t Tri) String() string {
	switch t {
	case Yes:
		return "true"
	case No:
		return "false"
	}
	return "unknown"
}

// MergeTri combines two claims about the same venue: an explicit No is never
// overwritten, a Yes fills an Unknown.
func MergeTri(a, b Tri) Tri {
	if a == No || b == No {
		return No
	}
	if a == Yes || b == Yes {
		return Yes
	}
	return Unknown
}

// MarshalJSON encodes Unknown as null.
func (t Tri) MarshalJSON() ([]byte, error) {
	switch t {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

func (t *Tri) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "true":
		*t = Yes
	case "false":
		*t = No
	case "null", `"unknown"`, `""`:
		*t = Unknown
	default:
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("tri-state: unexpected value %s", string(b))
		}
		switch s {
		case "true", "yes":
			*t = Yes
		case "false", "no":
			*t = No
		default:
			return fmt.Errorf("tri-state: unexpected value %q", s)
		}
	}
	return nil
}
