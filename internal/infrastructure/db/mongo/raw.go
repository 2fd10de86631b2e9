package mongo

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Stored documents are decoded through bson.RawValue so that one field of an
// unexpected type degrades to a default instead of failing the whole query.

// rawID returns the hex form of an ObjectID, a string ID as is, or "".
func rawID(v bson.RawValue) string {
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	return ""
}

// rawString returns v when it is a non-empty string, otherwise def.
func rawString(v bson.RawValue, def string) string {
	if s, ok := v.StringValueOK(); ok && s != "" {
		return s
	}
	return def
}

// rawInt returns v when it is a non-zero number, otherwise def. Doubles are
// truncated toward zero.
func rawInt(v bson.RawValue, def int) int {
	var n int
	if i, ok := v.Int32OK(); ok {
		n = int(i)
	} else if i, ok := v.Int64OK(); ok {
		n = int(i)
	} else if f, ok := v.DoubleOK(); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		n = int(f)
	}
	if n == 0 {
		return def
	}
	return n
}

// Layouts accepted for timestamps stored as strings. Values without a zone
// are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// rawTime reads a BSON date or an ISO 8601 string. Anything else is the zero time.
func rawTime(v bson.RawValue) time.Time {
	if ms, ok := v.DateTimeOK(); ok {
		return time.UnixMilli(ms).UTC()
	}
	s, ok := v.StringValueOK()
	if !ok {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
