package story

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/verte-zerg/typist/internal/model"
)

const graphSchema = `
#Choice: {
	label:  string & !=""
	target: string & !=""
}
#Node: {
	id:           string & !=""
	title:        string & !=""
	lesson_keys:  string & !=""
	success_text: string | *""
	failure_text: string | *""
	choices:      [...#Choice] | *[]
	failure_next: string | *""
}
start: string | *"start"
nodes: [...#Node]
`

type graphDoc struct {
	Start string    `json:"start"`
	Nodes []nodeDoc `json:"nodes"`
}

type nodeDoc struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	LessonKeys  string      `json:"lesson_keys"`
	SuccessText string      `json:"success_text"`
	FailureText string      `json:"failure_text"`
	Choices     []choiceDoc `json:"choices"`
	FailureNext string      `json:"failure_next"`
}

type choiceDoc struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// LoadFile reads a story graph from a CUE (or JSON) file.
func LoadFile(path string) (*Graph, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, content)
}

// Parse validates content against the story schema and builds a graph.
func Parse(filename string, content []byte) (*Graph, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString("close({" + graphSchema + "})")
	if err := schema.Err(); err != nil {
		return nil, err
	}

	value := ctx.CompileBytes(content, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, err
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("story file %s: %w", filename, err)
	}

	var doc graphDoc
	if err := unified.Decode(&doc); err != nil {
		return nil, fmt.Errorf("story file %s: %w", filename, err)
	}

	nodes := make([]model.StoryNode, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		node := model.StoryNode{
			ID:          n.ID,
			Title:       n.Title,
			LessonKeys:  n.LessonKeys,
			SuccessText: n.SuccessText,
			FailureText: n.FailureText,
			FailureNext: n.FailureNext,
		}
		for _, c := range n.Choices {
			node.Choices = append(node.Choices, model.Choice{Label: c.Label, Target: c.Target})
		}
		nodes = append(nodes, node)
	}
	return NewGraph(doc.Start, nodes)
}
