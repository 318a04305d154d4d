package markdown

import (
	"regexp"
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// PostLink is a ">>N" reference to post N of the same thread.
type PostLink struct {
	ast.BaseInline
	Number int
}

func (n *PostLink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Number": strconv.Itoa(n.Number)}, nil)
}

var KindPostLink = ast.NewNodeKind("PostLink")

func (n *PostLink) Kind() ast.NodeKind {
	return KindPostLink
}

var postLinkPrefix = regexp.MustCompile(`^>>(\d+)`)

type postLinkParser struct{}

// NewPostLinkParser parses ">>N" in inline text. Code spans and code blocks
// are never handed to inline parsers, so references inside code stay text.
func NewPostLinkParser() parser.InlineParser {
	return &postLinkParser{}
}

func (p *postLinkParser) Trigger() []byte {
	return []byte{'>'}
}

func (p *postLinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := postLinkPrefix.FindSubmatch(line)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return nil
	}
	block.Advance(len(m[0]))
	return &PostLink{Number: n}
}

type postLinkRenderer struct{}

func newPostLinkRenderer() renderer.NodeRenderer {
	return &postLinkRenderer{}
}

func (r *postLinkRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindPostLink, r.renderPostLink)
}

func (r *postLinkRenderer) renderPostLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(postLinkHTML(node.(*PostLink).Number))
	}
	return ast.WalkContinue, nil
}

func postLinkHTML(n int) string {
	num := strconv.Itoa(n)
	return `<a class="post-link" href="#post-` + num + `">&gt;&gt;` + num + `</a>`
}
