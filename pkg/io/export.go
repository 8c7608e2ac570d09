package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

type graph struct {
	Type      string  `json:"type"`
	Name      string  `json:"name,omitempty"`
	SourceApp string  `json:"source_app,omitempty"`
	Groups    []group `json:"groups,omitempty"`
	Nodes     []node  `json:"nodes"`
	Links     []link  `json:"links,omitempty"`
}

type group struct {
	Name    string   `json:"name"`
	Inputs  []socket `json:"inputs,omitempty"`
	Outputs []socket `json:"outputs,omitempty"`
	Nodes   []node   `json:"nodes"`
	Links   []link   `json:"links,omitempty"`
}

type node struct {
	TypeID         string      `json:"type_id"`
	Variant        string      `json:"variant,omitempty"`
	Name           string      `json:"name,omitempty"`
	Label          string      `json:"label,omitempty"`
	Location       *[2]float64 `json:"location,omitempty"`
	Inputs         []socket    `json:"inputs,omitempty"`
	Outputs        []socket    `json:"outputs,omitempty"`
	Props          []property  `json:"props,omitempty"`
	Muted          bool        `json:"muted,omitempty"`
	UseCustomColor bool        `json:"use_custom_color,omitempty"`
	Color          *[3]float64 `json:"color,omitempty"`

	// Parent is the index of the parent frame in the same block's node
	// list; Group names a definition from the groups array.
	Parent *int   `json:"parent,omitempty"`
	Group  string `json:"group,omitempty"`
}

type socket struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Default *value `json:"default,omitempty"`
}

type property struct {
	Name  string `json:"name"`
	Value value  `json:"value"`
}

type link struct {
	From       int `json:"from"`
	FromSocket int `json:"from_socket"`
	To         int `json:"to"`
	ToSocket   int `json:"to_socket"`
}

// WriteJSON encodes a tree as JSON and writes it to w.
// The output carries the full graph: groups (children first, as stored),
// nodes with sockets, defaults and properties, links by node index, and
// frame parenting. It can be re-imported with [ReadJSON] for round-trip
// processing.
func WriteJSON(t *tree.Tree, w io.Writer) error {
	out := graph{
		Type:      string(t.Type),
		Name:      t.Name,
		SourceApp: t.SourceApp,
	}

	for _, g := range t.Groups {
		nodes, links, err := exportBlock(g.Nodes, g.Links)
		if err != nil {
			return fmt.Errorf("group %s: %w", g.Name, err)
		}
		out.Groups = append(out.Groups, group{
			Name:    g.Name,
			Inputs:  exportInterface(g.Inputs),
			Outputs: exportInterface(g.Outputs),
			Nodes:   nodes,
			Links:   links,
		})
	}

	var err error
	out.Nodes, out.Links, err = exportBlock(t.Nodes, t.Links)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a tree to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(t *tree.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(t, f)
}

func exportBlock(nodes []*tree.Node, links []tree.Link) ([]node, []link, error) {
	index := make(map[*tree.Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	outNodes := make([]node, len(nodes))
	for i, n := range nodes {
		nd := node{
			TypeID:         n.TypeID,
			Variant:        n.Variant,
			Name:           n.Name,
			Label:          n.Label,
			Muted:          n.Muted,
			UseCustomColor: n.UseCustomColor,
		}
		if n.Location != [2]float64{} {
			loc := n.Location
			nd.Location = &loc
		}
		if n.Color != [3]float64{} {
			col := n.Color
			nd.Color = &col
		}
		var err error
		if nd.Inputs, err = exportSockets(n.Inputs); err != nil {
			return nil, nil, fmt.Errorf("node %s: %w", n.Name, err)
		}
		if nd.Outputs, err = exportSockets(n.Outputs); err != nil {
			return nil, nil, fmt.Errorf("node %s: %w", n.Name, err)
		}
		for _, p := range n.Props {
			v, err := encodeValue(p.Value)
			if err != nil {
				return nil, nil, fmt.Errorf("node %s property %s: %w", n.Name, p.Name, err)
			}
			nd.Props = append(nd.Props, property{Name: p.Name, Value: v})
		}
		if n.ParentFrame != nil {
			pi, ok := index[n.ParentFrame]
			if !ok {
				return nil, nil, fmt.Errorf("node %s: parent frame not in the same block", n.Name)
			}
			nd.Parent = &pi
		}
		if n.Group != nil {
			nd.Group = n.Group.Name
		}
		outNodes[i] = nd
	}

	var outLinks []link
	for _, l := range links {
		fi, okF := index[l.FromNode]
		ti, okT := index[l.ToNode]
		if !okF || !okT {
			return nil, nil, fmt.Errorf("link endpoint not in the same block")
		}
		outLinks = append(outLinks, link{From: fi, FromSocket: l.FromSocket, To: ti, ToSocket: l.ToSocket})
	}
	return outNodes, outLinks, nil
}

func exportSockets(socks []*tree.Socket) ([]socket, error) {
	var out []socket
	for _, s := range socks {
		sd := socket{Name: s.Name, Type: s.Type}
		if s.Default != nil {
			v, err := encodeValue(s.Default)
			if err != nil {
				return nil, fmt.Errorf("socket %s: %w", s.Name, err)
			}
			sd.Default = &v
		}
		out = append(out, sd)
	}
	return out, nil
}

func exportInterface(socks []tree.InterfaceSocket) []socket {
	var out []socket
	for _, s := range socks {
		out = append(out, socket{Name: s.Name, Type: s.Type})
	}
	return out
}
