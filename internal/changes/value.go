package changes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/opis/internal/labels"
	"github.com/erazemk/opis/internal/model"
)

// Kind selects how a field value is compared and rendered.
type Kind int

// Value kinds.
const (
	KindText Kind = iota
	KindOptionalText
	KindCode
	KindDate
	KindTimestamp
	KindInt
	KindComponents
	KindInterfaces
)

// TimestampLayout is the rendering of timestamps in change lists.
const TimestampLayout = "2006-01-02 15:04:05"

// Value is one field value tagged with its kind. Only the members that
// belong to Kind are meaningful.
type Value struct {
	Kind Kind
	Set  bool
	Text string
	Time time.Time
	Int  int64
	List model.JSONList
}

// Equal reports whether two values are identical before rendering.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind || v.Set != o.Set {
		return false
	}
	if !v.Set {
		return true
	}
	switch v.Kind {
	case KindText, KindOptionalText, KindCode:
		return v.Text == o.Text
	case KindDate, KindTimestamp:
		return v.Time.Equal(o.Time)
	case KindInt:
		return v.Int == o.Int
	case KindComponents, KindInterfaces:
		return bytes.Equal(v.List, o.List)
	}
	return false
}

// Render returns the display string stored in change lists and exports.
func (v Value) Render(tbl *labels.Table) string {
	if v.Kind == KindText {
		return v.Text
	}
	if !v.Set {
		return tbl.Empty
	}
	switch v.Kind {
	case KindOptionalText, KindCode:
		return v.Text
	case KindDate:
		return v.Time.Format(model.DateLayout)
	case KindTimestamp:
		return v.Time.UTC().Format(TimestampLayout)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindComponents:
		return renderComponents(v.List, tbl)
	case KindInterfaces:
		return renderInterfaces(v.List, tbl)
	}
	return tbl.Empty
}

func text(s string) Value { return Value{Kind: KindText, Set: true, Text: s} }

func optText(s *string) Value {
	if s == nil {
		return Value{Kind: KindOptionalText}
	}
	return Value{Kind: KindOptionalText, Set: true, Text: *s}
}

func code(s string) Value {
	return Value{Kind: KindCode, Set: s != "", Text: s}
}

func date(d *model.Date) Value {
	if d == nil {
		return Value{Kind: KindDate}
	}
	return Value{Kind: KindDate, Set: true, Time: d.Time}
}

func timestamp(t *time.Time) Value {
	if t == nil {
		return Value{Kind: KindTimestamp}
	}
	return Value{Kind: KindTimestamp, Set: true, Time: *t}
}

func integer[T int | int64](n *T) Value {
	if n == nil {
		return Value{Kind: KindInt}
	}
	return Value{Kind: KindInt, Set: true, Int: int64(*n)}
}

func list(k Kind, l model.JSONList) Value {
	return Value{Kind: k, Set: len(l) > 0, List: l}
}

// decodeList parses a list of flat objects. Anything that is not a JSON
// array of objects yields ok=false.
func decodeList(l model.JSONList) ([]map[string]any, bool) {
	if len(l) == 0 {
		return nil, false
	}
	var items []map[string]any
	if err := json.Unmarshal(l, &items); err != nil {
		return nil, false
	}
	return items, len(items) > 0
}

// str stringifies a decoded JSON member; missing and empty values are "".
func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if !x {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(x)
	}
}

func renderComponents(l model.JSONList, tbl *labels.Table) string {
	items, ok := decodeList(l)
	if !ok {
		return tbl.Empty
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		typ := str(item["type"])
		if typ == "" {
			typ = model.ComponentOther
		}
		label := tbl.Component(typ)
		name := strings.TrimSpace(str(item["name"]))
		if name == "" {
			parts = append(parts, label)
			continue
		}
		parts = append(parts, label+": "+name)
	}
	return strings.Join(parts, "; ")
}

func renderInterfaces(l model.JSONList, tbl *labels.Table) string {
	items, ok := decodeList(l)
	if !ok {
		return tbl.Empty
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		label := str(item["label"])
		if label == "" {
			label = tbl.DefaultInterface
		}
		label = strings.TrimSpace(label)
		ip := strings.TrimSpace(str(item["ip"]))

		if str(item["type"]) == model.InterfaceOOB {
			label = "OOB"
		}
		if ip == "" {
			parts = append(parts, label)
			continue
		}
		parts = append(parts, label+": "+ip)
	}
	return strings.Join(parts, "; ")
}

// Components decodes an extra components list, skipping it entirely when
// it is malformed.
func Components(l model.JSONList) []model.Component {
	items, _ := decodeList(l)
	out := make([]model.Component, 0, len(items))
	for _, item := range items {
		out = append(out, model.Component{Type: str(item["type"]), Name: str(item["name"])})
	}
	return out
}

// Interfaces decodes a network interfaces list, skipping it entirely when
// it is malformed.
func Interfaces(l model.JSONList) []model.NetworkInterface {
	items, _ := decodeList(l)
	out := make([]model.NetworkInterface, 0, len(items))
	for _, item := range items {
		typ := str(item["type"])
		if typ == "" {
			typ = model.InterfaceNetwork
		}
		out = append(out, model.NetworkInterface{Label: str(item["label"]), Type: typ, IP: str(item["ip"])})
	}
	return out
}
