// Package category maps fine-grained annotation labels to dataset categories.
//
// Categories come from a label file: one class name per line, where the first
// line must be the sentinel "__ignore__". The remaining lines become
// categories with ids 0..N-1 in file order.
//
// A group table assigns fine-grained labels to top-level categories. For
// example, the "CARD" category may group "BLX", "CMND", "PASSPORT" and other
// document labels. The table is read from TOML:
//
//	[[group]]
//	name = "CARD"
//	members = ["BLX", "BLX_BACK", "CMND"]
//
// A Resolver combines both: it walks the categories in label-file order and
// returns the first whose group contains a label. Labels that belong to no
// group are unresolved; callers drop those instances.
//
// All types in this package are immutable after construction and safe for
// concurrent use.
package category
