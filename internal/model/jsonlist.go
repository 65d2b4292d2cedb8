package model

import (
	"bytes"
	"database/sql/driver"
	"fmt"
)

// JSONList holds the serialized form of a list-valued asset field. It is
// kept verbatim so that legacy or malformed values survive a round trip;
// decoding happens only where the list is rendered.
type JSONList []byte

func (l JSONList) MarshalJSON() ([]byte, error) {
	if len(l) == 0 {
		return []byte("null"), nil
	}
	return l, nil
}

func (l *JSONList) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*l = nil
		return nil
	}
	*l = append((*l)[:0:0], b...)
	return nil
}

// Value implements driver.Valuer. Empty lists are stored as NULL.
func (l JSONList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return string(l), nil
}

// Scan implements sql.Scanner.
func (l *JSONList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
	case string:
		*l = JSONList(v)
	case []byte:
		*l = append((*l)[:0:0], v...)
	default:
		return fmt.Errorf("unsupported list source %T", src)
	}
	return nil
}
