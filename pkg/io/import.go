package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// ReadJSON decodes a JSON graph from r into a tree.
//
// The input must be a JSON object with a "type" field and a "nodes"
// array:
//
//	{
//	  "type": "MATERIAL",
//	  "nodes": [{"type_id": "ShaderNodeMath", "name": "Math"}],
//	  "links": [{"from": 0, "from_socket": 0, "to": 1, "to_socket": 0}]
//	}
//
// Optional top-level fields are "name", "source_app", "groups" and
// "links". Groups must appear before any node that references them,
// which is how [WriteJSON] orders them. Link endpoints are indexes into
// the node array of the same block.
//
// ReadJSON returns an error if:
//   - The JSON is malformed or invalid
//   - The tree type is not MATERIAL, GEOMETRY or COMPOSITOR
//   - A node references an undeclared group
//   - A link or parent index is out of range
//   - The assembled graph fails [tree.Tree.Validate]
//
// Errors are wrapped with context describing which group, node or link
// caused the problem. Use errors.Is or errors.As to check for specific
// tree errors.
//
// The returned tree is independent of r and can be modified safely after
// ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*tree.Tree, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	typ, err := tree.ParseTreeType(data.Type)
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", data.Type, err)
	}
	t := tree.New(typ, data.Name)
	t.SourceApp = data.SourceApp

	byName := make(map[string]*tree.Group, len(data.Groups))
	for _, gd := range data.Groups {
		grp := &tree.Group{
			Name:    gd.Name,
			Inputs:  importInterface(gd.Inputs),
			Outputs: importInterface(gd.Outputs),
		}
		if err := importBlock(gd.Nodes, gd.Links, byName, grp.AddNode, grp.AddLink); err != nil {
			return nil, fmt.Errorf("group %s: %w", gd.Name, err)
		}
		if err := t.AddGroup(grp); err != nil {
			return nil, fmt.Errorf("group %s: %w", gd.Name, err)
		}
		byName[gd.Name] = grp
	}

	if err := importBlock(data.Nodes, data.Links, byName, t.AddNode, t.AddLink); err != nil {
		return nil, err
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return t, nil
}

// ImportJSON reads a JSON file at path and returns the decoded tree.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. If the file cannot be opened, or if decoding fails, ImportJSON
// returns an error describing the failure. The error wraps the underlying
// cause with the file path for context.
//
// ImportJSON returns the same validation errors as [ReadJSON] for
// malformed graphs or trees that fail integrity checks.
func ImportJSON(path string) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func importBlock(nds []node, lks []link, groups map[string]*tree.Group, addNode func(*tree.Node) error, addLink func(tree.Link) error) error {
	built, err := importNodes(nds, groups)
	if err != nil {
		return err
	}
	for _, n := range built {
		if err := addNode(n); err != nil {
			return fmt.Errorf("node %s: %w", n.Name, err)
		}
	}
	for _, l := range lks {
		if l.From < 0 || l.From >= len(built) || l.To < 0 || l.To >= len(built) {
			return fmt.Errorf("link %d->%d: node index out of range", l.From, l.To)
		}
		err := addLink(tree.Link{
			FromNode:   built[l.From],
			FromSocket: l.FromSocket,
			ToNode:     built[l.To],
			ToSocket:   l.ToSocket,
		})
		if err != nil {
			return fmt.Errorf("link %d->%d: %w", l.From, l.To, err)
		}
	}
	return nil
}

func importNodes(nds []node, groups map[string]*tree.Group) ([]*tree.Node, error) {
	built := make([]*tree.Node, len(nds))
	for i, nd := range nds {
		n := &tree.Node{
			TypeID:         nd.TypeID,
			Variant:        nd.Variant,
			Name:           nd.Name,
			Label:          nd.Label,
			Muted:          nd.Muted,
			UseCustomColor: nd.UseCustomColor,
		}
		if nd.Location != nil {
			n.Location = *nd.Location
		}
		if nd.Color != nil {
			n.Color = *nd.Color
		}
		var err error
		if n.Inputs, err = importSockets(nd.Inputs); err != nil {
			return nil, fmt.Errorf("node %s: %w", nd.Name, err)
		}
		if n.Outputs, err = importSockets(nd.Outputs); err != nil {
			return nil, fmt.Errorf("node %s: %w", nd.Name, err)
		}
		for _, p := range nd.Props {
			v, err := p.Value.decode()
			if err != nil {
				return nil, fmt.Errorf("node %s property %s: %w", nd.Name, p.Name, err)
			}
			n.Props = append(n.Props, tree.Property{Name: p.Name, Value: v})
		}
		if nd.Group != "" {
			g, ok := groups[nd.Group]
			if !ok {
				return nil, fmt.Errorf("node %s: unknown group %q", nd.Name, nd.Group)
			}
			n.Group = g
		}
		built[i] = n
	}

	// Frames may serialize after their children, so parent pointers
	// resolve in a second pass.
	for i, nd := range nds {
		if nd.Parent == nil {
			continue
		}
		pi := *nd.Parent
		if pi < 0 || pi >= len(built) {
			return nil, fmt.Errorf("node %s: parent index %d out of range", nd.Name, pi)
		}
		built[i].ParentFrame = built[pi]
	}
	return built, nil
}

func importSockets(socks []socket) ([]*tree.Socket, error) {
	var out []*tree.Socket
	for _, sd := range socks {
		s := &tree.Socket{Name: sd.Name, Type: sd.Type}
		if sd.Default != nil {
			v, err := sd.Default.decode()
			if err != nil {
				return nil, fmt.Errorf("socket %s: %w", sd.Name, err)
			}
			s.Default = v
		}
		out = append(out, s)
	}
	return out, nil
}

func importInterface(socks []socket) []tree.InterfaceSocket {
	var out []tree.InterfaceSocket
	for _, sd := range socks {
		out = append(out, tree.InterfaceSocket{Name: sd.Name, Type: sd.Type})
	}
	return out
}
