package cli

import (
	"bytes"
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/meshtopo/pkg/errors"
	"github.com/matzehuels/meshtopo/pkg/mesh"
	"github.com/matzehuels/meshtopo/pkg/meshio"
	"github.com/matzehuels/meshtopo/pkg/pipeline"
)

// readMesh loads a mesh from an input document or from a result file
// written by "meshtopo run -f json". It returns the mesh and its name.
func readMesh(path string) (*mesh.Mesh, string, error) {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		doc, err := readDocument(path)
		if err != nil {
			return nil, "", err
		}
		m, err := doc.Mesh()
		return m, doc.Name, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
		}
		return nil, "", err
	}

	var wrapped struct {
		Mesh *meshio.Output `json:"mesh"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Mesh != nil {
		m, err := meshio.Import(wrapped.Mesh)
		if err != nil {
			return nil, "", err
		}
		name := wrapped.Mesh.Name
		if name == "" {
			name = baseName(path)
		}
		return m, name, nil
	}

	doc, err := meshio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if doc.Name == "" {
		doc.Name = baseName(path)
	}
	m, err := doc.Mesh()
	return m, doc.Name, err
}

// artifactPath returns the output path for one format. JSON results get a
// ".mesh.json" suffix so they never overwrite a JSON input.
func artifactPath(dir, base, format string) string {
	if format == pipeline.FormatJSON {
		return filepath.Join(dir, base+".mesh.json")
	}
	return filepath.Join(dir, base+"."+format)
}

// outputDir returns dir, or the directory of input when dir is empty.
func outputDir(dir, input string) string {
	if dir != "" {
		return dir
	}
	return filepath.Dir(input)
}

// writeArtifacts writes every artifact to dir and returns the paths in
// format order.
func writeArtifacts(dir, base string, artifacts map[string][]byte) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, format := range slices.Sorted(maps.Keys(artifacts)) {
		path := artifactPath(dir, base, format)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
