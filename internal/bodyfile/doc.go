// Package bodyfile loads function bodies from TOML files.
//
// A body file declares a small type universe and one or more bodies whose
// statements and terminators are written in the textual MIR syntax printed
// by mir.DumpBody:
//
//	generics = ["T"]
//
//	[params]
//	N = 4
//
//	[[adt]]
//	name = "Pair"
//	fields = ["String", "i32"]
//
//	[[adt]]
//	name = "Opt"
//	kind = "enum"
//	[[adt.variant]]
//	name = "None"
//	[[adt.variant]]
//	name = "Some"
//	fields = ["T"]
//
//	[[body]]
//	name = "f"
//	args = 1
//	[[body.local]]
//	type = "()"
//	[[body.local]]
//	type = "Pair"
//	name = "p"
//	[[body.block]]
//	stmts = ["_0 = const ()", "StorageDead(_1)"]
//	term = "return"
//
// Locals are numbered in declaration order; blocks likewise. ADT kinds are
// struct (the default), enum and union; dtor = true marks a user-defined
// destructor. Identifiers are NFC-normalized.
package bodyfile
