// Package bundle attributes measured bundle bytes to packages in the
// dependency graph.
//
// A bundler reports sizes per module path. [PackageName] maps a module path
// to the package that owns it by looking at the segment after the last
// "node_modules/" marker (two segments for scoped packages). [Attribute]
// sums the bytes per package, counting each module once even when several
// chunks list it, and writes the totals onto the matching graph nodes.
//
// Modules that cannot be mapped are reported as
// *errors.AttributionMismatch warnings. Their bytes are left unattributed:
// a package with no matched modules keeps an unknown size rather than zero.
//
// Size tables come from webpack stats files ([ReadWebpackStats]) or a plain
// JSON table ([ReadSizeTable]).
package bundle
