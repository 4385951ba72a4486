package dataset

import (
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KevoDB/sectionlist/pkg/config"
	"github.com/KevoDB/sectionlist/pkg/group"
)

// Field resolves a dot separated path such as "author.name" inside rec.
func Field(rec Record, path string) (*structpb.Value, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrUnknownField)
	}

	current := rec
	parts := strings.Split(path, ".")
	for i, part := range parts {
		v, ok := current.GetFields()[part]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, path)
		}
		if i == len(parts)-1 {
			return v, nil
		}
		current = v.GetStructValue()
		if current == nil {
			return nil, fmt.Errorf("%w: %s is not an object", ErrUnknownField, strings.Join(parts[:i+1], "."))
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownField, path)
}

// KeyString renders a value as a group key. Missing and null values render
// as the empty string; lists and objects render as compact JSON.
func KeyString(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return ""
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_StringValue:
		return k.StringValue
	default:
		data, err := json.Marshal(v.AsInterface())
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func rank(v *structpb.Value) int {
	switch v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return 0
	case *structpb.Value_BoolValue:
		return 1
	case *structpb.Value_NumberValue:
		return 2
	case *structpb.Value_StringValue:
		return 3
	default:
		return 4
	}
}

// CompareValues orders values null < bool < number < string < list/object.
// Values of the same kind compare naturally; lists and objects compare by
// their JSON text.
func CompareValues(a, b *structpb.Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case 0:
		return 0
	case 1:
		ab, bb := a.GetBoolValue(), b.GetBoolValue()
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case 2:
		return cmp.Compare(a.GetNumberValue(), b.GetNumberValue())
	case 3:
		return strings.Compare(a.GetStringValue(), b.GetStringValue())
	default:
		return strings.Compare(KeyString(a), KeyString(b))
	}
}

// value returns the field or nil when it is missing.
func value(rec Record, path string) *structpb.Value {
	v, err := Field(rec, path)
	if err != nil {
		return nil
	}
	return v
}

// ByField orders records by a field. Records missing the field sort as null.
func ByField(path string, descending bool) func(a, b Record) int {
	compare := func(a, b Record) int {
		return CompareValues(value(a, path), value(b, path))
	}
	if descending {
		return group.Reverse(compare)
	}
	return compare
}

// FieldGrouper groups records by the key string of a field.
func FieldGrouper(path string) group.Grouper[string, Record] {
	return func(rec Record) string {
		return KeyString(value(rec, path))
	}
}

// InitialGrouper groups records by the upper-cased first letter of a field.
// Values that do not start with a letter are grouped under "#".
func InitialGrouper(path string) group.Grouper[string, Record] {
	return func(rec Record) string {
		r, _ := utf8.DecodeRuneInString(KeyString(value(rec, path)))
		if !unicode.IsLetter(r) {
			return "#"
		}
		return string(unicode.ToUpper(r))
	}
}

// DisplayFunc returns the key display transform for a display mode.
func DisplayFunc(mode string) (func(string) string, error) {
	switch mode {
	case config.DisplayRaw, "":
		return group.Identity[string], nil
	case config.DisplayUpper:
		return func(s string) string { return cases.Upper(language.Und).String(s) }, nil
	case config.DisplayLower:
		return func(s string) string { return cases.Lower(language.Und).String(s) }, nil
	case config.DisplayTitle:
		return func(s string) string { return cases.Title(language.Und).String(s) }, nil
	default:
		return nil, fmt.Errorf("%w: display mode %q", ErrUnsupportedFormat, mode)
	}
}

// Sorter builds the group sorter a grouping configuration describes.
func Sorter(cfg config.GroupingConfig) (group.GroupSorter[string, Record, string], error) {
	var grouper group.Grouper[string, Record]
	switch cfg.Mode {
	case config.ModeValue, "":
		grouper = FieldGrouper(cfg.Field)
	case config.ModeInitial:
		grouper = InitialGrouper(cfg.Field)
	default:
		return nil, fmt.Errorf("%w: grouping mode %q", ErrUnsupportedFormat, cfg.Mode)
	}

	var compare func(a, b group.Group[string, Record]) int
	switch cfg.GroupOrder {
	case config.GroupOrderFirst, "":
		compare = func(a, b group.Group[string, Record]) int { return 0 }
	case config.GroupOrderKey:
		compare = group.ByOrderedKey[string, Record]()
	case config.GroupOrderKeyDesc:
		compare = group.Reverse(group.ByOrderedKey[string, Record]())
	case config.GroupOrderSize:
		compare = group.BySize[string, Record]()
	default:
		return nil, fmt.Errorf("%w: group order %q", ErrUnsupportedFormat, cfg.GroupOrder)
	}

	display, err := DisplayFunc(cfg.Display)
	if err != nil {
		return nil, err
	}

	sorter, err := group.NewGroupSorter(grouper, compare, display)
	if err != nil {
		return nil, err
	}
	return sorter, nil
}

// ValueComparator orders the records inside a group. Without a sort field
// every record compares equal, so the input order is kept.
func ValueComparator(cfg config.GroupingConfig) func(a, b Record) int {
	if cfg.SortBy == "" {
		return func(a, b Record) int { return 0 }
	}
	return ByField(cfg.SortBy, cfg.Descending)
}

// Label renders a record for display: the value of field when the record
// has it, otherwise the whole record as compact JSON.
func Label(rec Record, field string) string {
	if field != "" {
		if v, err := Field(rec, field); err == nil {
			return KeyString(v)
		}
	}
	data, err := json.Marshal(rec.AsMap())
	if err != nil {
		return ""
	}
	return string(data)
}

// Group groups records as cfg describes.
func Group(records []Record, cfg config.GroupingConfig) (*group.Groups[string, Record], error) {
	sorter, err := Sorter(cfg)
	if err != nil {
		return nil, err
	}
	return group.GroupWithSorter(records, ValueComparator(cfg), sorter)
}
