package models

// NodeType is the category of a graph node
type NodeType string

const (
	NodeDrug    NodeType = "drug"
	NodeTrial   NodeType = "trial"
	NodePubmed  NodeType = "pubmed"
	NodeJournal NodeType = "journal"
)

// ElementEdge is the class tag carried by edge elements in the exported graph
const ElementEdge = "edge"

// Valid reports whether t is one of the known node types
func (t NodeType) Valid() bool {
	switch t {
	case NodeDrug, NodeTrial, NodePubmed, NodeJournal:
		return true
	}
	return false
}

// Node is a typed, labeled entity of the reference graph.
// Two nodes are the same entity iff Type and Label are equal.
type Node struct {
	ID    int      `json:"id"`
	Type  NodeType `json:"type"`
	Label string   `json:"label"`
}

// Edge is a dated reference from a drug to a trial, publication or journal
type Edge struct {
	ID     int    `json:"id"`
	Source int    `json:"source"`
	Target int    `json:"target"`
	Date   string `json:"date"`
}

// Graph holds nodes and edges in creation order
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeByID returns the node with the given id
func (g *Graph) NodeByID(id int) (Node, bool) {
	// ids are assigned sequentially, so the fast path is a direct index
	if id >= 0 && id < len(g.Nodes) && g.Nodes[id].ID == id {
		return g.Nodes[id], true
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Drug is a row of the drugs input file
type Drug struct {
	ID   string `json:"atccode"`
	Name string `json:"drug"`
}

// Record is a row of the clinical trials or publications input.
// Trials and publications share the same shape.
type Record struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Journal string `json:"journal"`
}

// Reference is a relationship discovered between a drug and a record
type Reference struct {
	Kind  NodeType `json:"kind"`
	Label string   `json:"label"`
	Date  string   `json:"date"`
}

// JournalStat is the number of drug references attributed to a journal
type JournalStat struct {
	NodeID     int    `json:"node_id"`
	Journal    string `json:"journal"`
	References int    `json:"references"`
}

// ElementData is the payload of an exported graph element.
// Node elements carry ID and Label, edge elements carry Source and Target.
type ElementData struct {
	ID      string `json:"id,omitempty"`
	Source  string `json:"source,omitempty"`
	Target  string `json:"target,omitempty"`
	Label   string `json:"label"`
	Classes string `json:"classes"`
}

// Element is one entry of the exported graph element list
type Element struct {
	Data ElementData `json:"data"`
}

// GraphStats summarizes a graph
type GraphStats struct {
	Nodes       int              `json:"nodes"`
	Edges       int              `json:"edges"`
	NodesByType map[NodeType]int `json:"nodes_by_type"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}

// PagedResponse represents a paginated response
type PagedResponse struct {
	Data       interface{} `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalItems int `json:"total_items"`
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}
