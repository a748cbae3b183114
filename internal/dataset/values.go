package dataset

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"stageflow/internal/production"
)

// Timestamp decodes any of the timestamp shapes found in exports. Values that
// cannot be interpreted decode to the zero time.
type Timestamp struct {
	time.Time
}

type epochObject struct {
	Seconds     *float64 `json:"seconds"`
	Nanoseconds *int64   `json:"nanoseconds"`
	Underscored *float64 `json:"_seconds"`
	UnderNanos  *int64   `json:"_nanoseconds"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil
		}
		t.Time = production.ParseTimestampOrZero(raw)
	case '{':
		var obj epochObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil
		}
		t.Time = obj.time()
	default:
		seconds, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			return nil
		}
		t.Time = epochOrZero(seconds, 0)
	}
	return nil
}

func (o epochObject) time() time.Time {
	seconds := o.Seconds
	nanos := o.Nanoseconds
	if seconds == nil {
		seconds = o.Underscored
		nanos = o.UnderNanos
	}
	if seconds == nil {
		return time.Time{}
	}
	var n int64
	if nanos != nil {
		n = *nanos
	}
	return epochOrZero(*seconds, n)
}

// Epoch values above this are milliseconds.
const millisThreshold = 1e11

func epochOrZero(seconds float64, nanos int64) time.Time {
	if seconds > millisThreshold {
		seconds /= 1000
	}
	ts, err := production.FromEpochSeconds(seconds, nanos)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Number decodes JSON numbers, numeric strings, booleans, and null. Anything
// else decodes to zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil
		}
		*n = Number(value)
	case 't':
		*n = 1
	case 'f', 'n':
		return nil
	default:
		value, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			return nil
		}
		*n = Number(value)
	}
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 {
	return float64(n)
}

// IDList decodes a list of identifiers, tolerating a single string or null and
// dropping blank entries.
type IDList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *IDList) UnmarshalJSON(data []byte) error {
	*l = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var single string
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		if id := strings.TrimSpace(single); id != "" {
			*l = IDList{id}
		}
		return nil
	}
	var raw []string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			*l = append(*l, id)
		}
	}
	return nil
}
