// Package join pairs emitting paces with receiving paces across thread instances.
//
// Match is a pure function of its input: it never mutates paces, so it can be
// re-run on the same instances. Link installs the resulting back-references.
package join
