package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/burden/internal/domain/model"
)

// DefaultTopologyObject is the object holding country geometries in world-110m.
const DefaultTopologyObject = "countries"

// Topology is a parsed TopoJSON document.
type Topology struct {
	Raw    json.RawMessage
	Object string
	Shapes []model.Shape
}

type topoDocument struct {
	Type    string                     `json:"type"`
	Objects map[string]json.RawMessage `json:"objects"`
}

type topoObject struct {
	Geometries []json.RawMessage `json:"geometries"`
}

type topoGeometry struct {
	ID         json.RawMessage `json:"id"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// LoadTopology reads a TopoJSON document and extracts the geometries of object.
// Geometries without an id cannot be joined and are skipped.
func LoadTopology(ctx context.Context, r io.Reader, object string) (*Topology, error) {
	if object == "" {
		object = DefaultTopologyObject
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc topoDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: topology: %w", ErrMalformed, err)
	}
	if doc.Type != "Topology" {
		return nil, fmt.Errorf("%w: topology type %q", ErrMalformed, doc.Type)
	}
	objRaw, ok := doc.Objects[object]
	if !ok {
		return nil, fmt.Errorf("%w: topology object %q", ErrMissingColumn, object)
	}
	var obj topoObject
	if err := json.Unmarshal(objRaw, &obj); err != nil {
		return nil, fmt.Errorf("%w: topology object %q: %w", ErrMalformed, object, err)
	}

	topo := &Topology{Raw: raw, Object: object, Shapes: make([]model.Shape, 0, len(obj.Geometries))}
	for i, g := range obj.Geometries {
		var geo topoGeometry
		if err := json.Unmarshal(g, &geo); err != nil {
			return nil, fmt.Errorf("%w: geometry %d: %w", ErrMalformed, i, err)
		}
		id := bytes.TrimSpace(geo.ID)
		if len(id) == 0 || bytes.Equal(id, []byte("null")) {
			continue
		}
		topo.Shapes = append(topo.Shapes, model.Shape{
			ID:       NormalizeID(string(id)),
			RawID:    append(json.RawMessage(nil), id...),
			Name:     geo.Properties.Name,
			Geometry: g,
		})
	}
	return topo, nil
}
