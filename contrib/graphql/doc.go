// Package graphql renders resolved xjoin descriptor graphs as a GraphQL
// schema (SDL) for use with the gqlgen GraphQL library.
//
// # Features
//
// For every schema in the graph the package generates:
//   - an object type named after the schema, e.g. hosts becomes Hosts
//   - a Query field returning the records, with limit and offset arguments
//   - a filter input type built from the resolved filter types, with one
//     nested input per json field that declares children
//
// Fields marked as primary keys become non-null and carry @primaryKey.
// Fields with enumeration enabled carry @enumeration. The Object and
// Reference types produced by the resolver are declared as scalars and
// bound to gqlgen types in gqlgen.yml.
//
// # Usage
//
//	g, err := gen.NewGraph(cfg, schemas...)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ex, err := graphql.NewExtension(
//	    graphql.WithConfigPath("./gqlgen.yml"),
//	    graphql.WithSchemaPath("./graph/xjoin.graphql"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := ex.Generate(ctx, g); err != nil {
//	    log.Fatal(err)
//	}
//
// The generated SDL is validated with gqlparser before it is written.
package graphql
