// Package meshio reads mesh input documents and writes processed meshes.
//
// # Input
//
// A [Document] describes a planar region either as boundary loops (an outer
// loop followed by holes) or as an explicit triangulation:
//
//	{
//	  "name": "plate",
//	  "vertices": [[0,0], [4,0], [4,3], [0,3], [1,1], [2,1], [2,2]],
//	  "loops": [[0,1,2,3], [4,5,6]]
//	}
//
// Documents are read from JSON with [ReadJSON] or from the polygon and rect
// elements of an SVG file with [ReadSVG].
//
// # Output
//
// [Export] converts a mesh into an [Output]: one entry per vertex and the
// bounded faces as counter-clockwise vertex index lists.
package meshio
