// Package ftl is the shared document model for Fluent translation resources.
//
// It builds on the fluent.go parser AST: parsing (with junk-based error
// recovery), canonical serialization back to FTL text, key extraction and
// recursive variable extraction all live here. Every other internal package
// imports ftl; ftl imports nothing internal, so it stays the foundational
// layer with no circular dependencies.
//
// Resources are parsed fresh for every operation. Nothing in this package
// caches an AST between invocations.
package ftl
