package export

import (
	"encoding/xml"
	"os"
	"strconv"
)

// GraphMLWriter writes the coupling graph with cluster assignments for
// graph viewers.
type GraphMLWriter struct{}

func (GraphMLWriter) Format() string { return "graphml" }

type graphML struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphMLKey `xml:"key"`
	Graph   graphMLGraph `xml:"graph"`
}

type graphMLKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
	Type string `xml:"attr.type,attr"`
}

type graphMLGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphMLNode `xml:"node"`
	Edges       []graphMLEdge `xml:"edge"`
}

type graphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type graphMLNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphMLData `xml:"data"`
}

type graphMLEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphMLData `xml:"data"`
}

func (GraphMLWriter) Write(r *Report, dir string) ([]string, error) {
	doc := graphML{
		XMLNS: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphMLKey{
			{ID: "title", For: "node", Name: "title", Type: "string"},
			{ID: "year", For: "node", Name: "year", Type: "int"},
			{ID: "cluster", For: "node", Name: "cluster", Type: "int"},
			{ID: "weight", For: "edge", Name: "weight", Type: "int"},
		},
		Graph: graphMLGraph{ID: "coupling", EdgeDefault: "undirected"},
	}
	if r.Graph != nil {
		for _, id := range r.Graph.NodeIDs() {
			v, _ := r.Graph.Vertex(id)
			doc.Graph.Nodes = append(doc.Graph.Nodes, graphMLNode{
				ID: id,
				Data: []graphMLData{
					{Key: "title", Value: v.Title},
					{Key: "year", Value: strconv.Itoa(v.Year)},
					{Key: "cluster", Value: strconv.Itoa(r.ClusterOf[id])},
				},
			})
		}
		for _, e := range r.Graph.Edges() {
			doc.Graph.Edges = append(doc.Graph.Edges, graphMLEdge{
				Source: e.Source,
				Target: e.Target,
				Data:   []graphMLData{{Key: "weight", Value: strconv.Itoa(e.Weight)}},
			})
		}
	}
	return writeFile(dir, "bibnet.graphml", func(f *os.File) error {
		if _, err := f.WriteString(xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(f)
		enc.Indent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Flush()
	})
}
