// Package triangulate turns regular faces into triangles and refines
// triangle meshes.
//
// [Fan] joins the lowest vertex of each bounded face to all others, which
// is valid for the monotone faces produced by package regularize.
// [Subdivide] inserts at most one vertex per edge, chosen by a [Splitter],
// and retriangulates the affected triangles so that neighbouring triangles
// share the new vertices.
package triangulate
