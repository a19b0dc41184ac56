package avro

import "github.com/go-openapi/inflect"

// xjoin.type values with a dedicated GraphQL mapping.
const (
	XJoinDateNanos = "date_nanos"
	XJoinString    = "string"
	XJoinBoolean   = "boolean"
	XJoinJSON      = "json"
	XJoinRecord    = "record"
	XJoinReference = "reference"
	XJoinArray     = "array"
)

// GraphQL output type names.
const (
	GraphQLString     = "String"
	GraphQLBoolean    = "Boolean"
	GraphQLObject     = "Object"
	GraphQLReference  = "Reference"
	GraphQLStringList = "[String]"
)

// GraphQL filter input type names.
const (
	FilterString      = "FilterString"
	FilterTimestamp   = "FilterTimestamp"
	FilterBoolean     = "FilterBoolean"
	FilterStringArray = "FilterStringArray"
)

// FieldTypes is the resolved descriptor of a field.
type FieldTypes struct {
	GraphQLType string `json:"graphql_type" msgpack:"graphql_type"`
	FilterType  string `json:"filter_type" msgpack:"filter_type"`
	Enumeration bool   `json:"enumeration" msgpack:"enumeration"`
	PrimaryKey  bool   `json:"primary_key" msgpack:"primary_key"`
	AvroType    string `json:"avro_type" msgpack:"avro_type"`
	XJoinType   string `json:"xjoin_type" msgpack:"xjoin_type"`
}

type typeMapping struct {
	graphql string
	filter  string
}

// json is absent: its filter type depends on the field's children.
var typeTable = map[string]typeMapping{
	XJoinDateNanos: {GraphQLString, FilterTimestamp},
	XJoinString:    {GraphQLString, FilterString},
	XJoinBoolean:   {GraphQLBoolean, FilterBoolean},
	XJoinRecord:    {GraphQLObject, FilterString},
	XJoinReference: {GraphQLReference, FilterString},
	XJoinArray:     {GraphQLStringList, FilterStringArray},
}

var defaultMapping = typeMapping{GraphQLString, FilterString}

// InputName returns the name of the nested filter input type of a field,
// e.g. "system_profile" becomes "InputSystemProfile".
func InputName(name string) string {
	return "Input" + inflect.Camelize(name)
}

// Resolver maps fields to descriptors.
type Resolver struct {
	// InputName names the filter input type of json fields with children.
	// InputName (the package function) is used when nil.
	InputName func(string) string
}

// DefaultResolver is the resolver used by Resolve.
var DefaultResolver = Resolver{InputName: InputName}

// Resolve returns the descriptor of f using DefaultResolver.
func Resolve(f *Field) FieldTypes {
	return DefaultResolver.Resolve(f)
}

// Resolve returns the descriptor of f. It never fails and does not modify f;
// unknown or missing xjoin types map to String/FilterString.
//
// For primitive references the Avro type, xjoin type and enumeration flag
// are read from the field itself and the field can never be a primary key.
// For object and union references they are read from the nested Type.
func (r Resolver) Resolve(f *Field) FieldTypes {
	var ft FieldTypes
	if f == nil {
		ft.GraphQLType, ft.FilterType = defaultMapping.graphql, defaultMapping.filter
		return ft
	}
	switch f.Type.Kind() {
	case KindObject, KindUnion:
		if t := f.Type.NonNull(); t != nil {
			ft.AvroType = t.Type
			ft.XJoinType = t.XJoinType
			ft.Enumeration = t.XJoinEnumeration
			ft.PrimaryKey = t.XJoinPrimaryKey
		}
	default:
		ft.AvroType = f.Type.Name()
		ft.XJoinType = f.XJoinType
		ft.Enumeration = f.XJoinEnumeration
	}
	if ft.XJoinType == XJoinJSON {
		ft.GraphQLType = GraphQLObject
		if f.HasChildren() {
			ft.FilterType = r.inputName(f.Name)
		}
		return ft
	}
	m, ok := typeTable[ft.XJoinType]
	if !ok {
		m = defaultMapping
	}
	ft.GraphQLType, ft.FilterType = m.graphql, m.filter
	return ft
}

func (r Resolver) inputName(name string) string {
	if r.InputName == nil {
		return InputName(name)
	}
	return r.InputName(name)
}
