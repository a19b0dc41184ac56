// Package gen turns loaded schemas into the per-field descriptors consumed by
// GraphQL schema generation, and writes them out as Go code.
//
// # Pipeline
//
//	Avro documents (compiler/load)
//	        ↓
//	   []*avro.Schema
//	        ↓
//	   Graph (validated, resolved descriptors)
//	        ↓
//	   DescriptorWriter (Go source)  +  contrib/graphql (SDL)
//
// # Key Types
//
//   - Graph: the resolved schemas, one Node per schema
//   - Node: a schema and its descriptor tree
//   - Descriptor: the resolved types of one field, with its dotted path
//   - Config: global configuration for generation
//   - Snapshots: digests of generated nodes, used to skip unchanged schemas
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: invalid or duplicate schemas, invalid fields
//   - ConfigError: configuration errors
//   - GenerationError: failures while rendering or writing files
//
// Field validation errors from the avro package are wrapped, so both layers
// can be checked:
//
//	g, err := gen.NewGraph(cfg, schemas...)
//	if xjoin.IsMissingXJoinType(err) {
//	    // a field has no xjoin.type
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithTarget("./xjoindesc"),
//	    gen.WithPackage("example.com/app/xjoindesc"),
//	    gen.WithEnumerations("hosts.display_name"),
//	)
//
// # Jennifer Generator
//
// Descriptor files are rendered with the Jennifer library and written in
// parallel, one file per schema plus a shared descriptors.go:
//
//	err := gen.Generate(ctx, g)
package gen
