package doctree

// UnknownTitle is reported when no title candidate is found on the first page.
const UnknownTitle = "Unknown Title"

// Word is a single positioned word as reported by a PDF text extractor.
// Coordinates are in points with the origin at the top-left of the page.
type Word struct {
	Text   string  `json:"text"`
	X0     float64 `json:"x0"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Size   float64 `json:"size,omitempty"`
}

// Page is the word stream of one page.
type Page struct {
	Number int     // 1-based
	Height float64 // same units as word coordinates
	Words  []Word
}

// Level is an outline heading level.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// Depth returns 1 for H1, 2 for H2 and 3 for H3.
func (l Level) Depth() int {
	switch l {
	case H1:
		return 1
	case H2:
		return 2
	case H3:
		return 3
	}
	return 0
}

// Entry is one heading of the inferred outline.
type Entry struct {
	Level Level  `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
	Page  int    `json:"page" yaml:"page"`
}

// Result is the outline inferred for one document.
type Result struct {
	Title   string  `json:"title" yaml:"title"`
	Outline []Entry `json:"outline" yaml:"outline"`
}

// NewResult returns an empty result with the placeholder title.
func NewResult() Result {
	return Result{Title: UnknownTitle, Outline: []Entry{}}
}

// DocTree is the nested form of an outline.
type DocTree struct {
	Title    string     // Document title
	Children []*DocNode // Top-level (H1) sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Heading text
	Level    Level      // Heading level
	Page     int        // Source page (1-based)
	Children []*DocNode // Subsections
}

// Tree folds the flat outline into a DocTree. A heading nests under the
// closest preceding heading of a shallower level; an H2 or H3 with no such
// parent becomes a top-level node.
func (r Result) Tree() *DocTree {
	tree := &DocTree{Title: r.Title}

	type stackEntry struct {
		node  *DocNode
		depth int
	}
	root := &DocNode{Title: r.Title}
	stack := []stackEntry{{node: root, depth: 0}}

	for _, e := range r.Outline {
		depth := e.Level.Depth()
		node := &DocNode{Title: e.Text, Level: e.Level, Page: e.Page}

		// Pop stack until we find a parent with lower depth.
		for len(stack) > 1 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, depth: depth})
	}

	tree.Children = root.Children
	return tree
}
