package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	KindProducts Kind = "products"
	KindOrders   Kind = "orders"
	KindContacts Kind = "contacts"
)

var Kinds = []Kind{KindProducts, KindOrders, KindContacts}

const (
	FieldID        = "id"
	FieldNativeID  = "_id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldStatus    = "status"
)

// MaxIDLength bounds caller-supplied identifiers so every backend can index them.
const MaxIDLength = 64

// TimestampLayout renders UTC times with millisecond precision and a Z suffix.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

func (k Kind) Valid() bool {
	switch k {
	case KindProducts, KindOrders, KindContacts:
		return true
	}
	return false
}

// Singular returns the capitalized singular noun used in response messages.
func (k Kind) Singular() string {
	s := strings.TrimSuffix(string(k), "s")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Updatable reports whether records of this kind accept merge-updates.
func (k Kind) Updatable() bool {
	return k == KindProducts || k == KindOrders
}

// Deletable reports whether records of this kind can be removed.
func (k Kind) Deletable() bool {
	return k == KindProducts || k == KindContacts
}

type Record map[string]any

func (r Record) ID() string {
	return IDString(r[FieldID])
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a new record with patch keys overwriting r's keys.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Text returns the field as a string, or "" when absent or not a string.
func (r Record) Text(field string) string {
	s, _ := r[field].(string)
	return s
}

// IDString renders an identifier value for equality checks. Numbers decoded
// from JSON compare equal to their decimal string form.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	case int:
		return strconv.Itoa(id)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case interface{ Hex() string }:
		return id.Hex()
	}
	return ""
}

// ValidFieldName rejects top-level keys that a document store would read as a
// nested path or an operator.
func ValidFieldName(name string) bool {
	return name != "" && !strings.Contains(name, ".") && !strings.HasPrefix(name, "$")
}

func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
