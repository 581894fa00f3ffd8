package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// YesNo is the answer to an optional yes/no question. The zero value is
// Unanswered, which is stored as NULL and never read back as No.
type YesNo int

const (
	Unanswered YesNo = iota
	Yes
	No
)

func (v YesNo) String() string {
	switch v {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return ""
	}
}

// ParseYesNo maps the wire form ("yes", "no", "") to a YesNo.
func ParseYesNo(s string) (YesNo, error) {
	switch s {
	case "yes":
		return Yes, nil
	case "no":
		return No, nil
	case "":
		return Unanswered, nil
	}
	return Unanswered, fmt.Errorf("invalid yes/no value %q", s)
}

// YesNoFromBool maps a nullable stored boolean.
func YesNoFromBool(b *bool) YesNo {
	if b == nil {
		return Unanswered
	}
	if *b {
		return Yes
	}
	return No
}

// Bool returns nil for Unanswered.
func (v YesNo) Bool() *bool {
	var b bool
	switch v {
	case Yes:
		b = true
	case No:
		b = false
	default:
		return nil
	}
	return &b
}

func (v YesNo) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *YesNo) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Unanswered
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseYesNo(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Value stores Yes/No as 1/0 and Unanswered as NULL.
func (v YesNo) Value() (driver.Value, error) {
	switch v {
	case Yes:
		return int64(1), nil
	case No:
		return int64(0), nil
	default:
		return nil, nil
	}
}

func (v *YesNo) Scan(src any) error {
	switch x := src.(type) {
	case nil:
		*v = Unanswered
	case int64:
		if x != 0 {
			*v = Yes
		} else {
			*v = No
		}
	case bool:
		if x {
			*v = Yes
		} else {
			*v = No
		}
	default:
		return fmt.Errorf("cannot scan %T into YesNo", src)
	}
	return nil
}
