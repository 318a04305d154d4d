package markdown

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Greentext is a run of consecutive lines starting with a single '>'.
type Greentext struct {
	ast.BaseBlock
}

func (n *Greentext) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

var KindGreentext = ast.NewNodeKind("Greentext")

func (n *Greentext) Kind() ast.NodeKind {
	return KindGreentext
}

type greentextParser struct{}

func NewGreentextParser() parser.BlockParser {
	return &greentextParser{}
}

func (b *greentextParser) Trigger() []byte {
	return []byte{'>'}
}

// ">>N" is a post anchor, not greentext
func isGreentextLine(line []byte) bool {
	return len(line) > 0 && line[0] == '>' && !(len(line) > 1 && line[1] == '>')
}

func (b *greentextParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	if !isGreentextLine(line) {
		return nil, parser.NoChildren
	}
	node := &Greentext{}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (b *greentextParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if util.IsBlank(line) || !isGreentextLine(line) {
		return parser.Close
	}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (b *greentextParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *greentextParser) CanInterruptParagraph() bool {
	return true
}

func (b *greentextParser) CanAcceptIndentedLine() bool {
	return false
}

// greentext lines are not inline-parsed, links are added to the escaped text
var escapedPostLink = regexp.MustCompile(`&gt;&gt;(\d+)`)

func linkPosts(escaped []byte) []byte {
	return escapedPostLink.ReplaceAllFunc(escaped, func(m []byte) []byte {
		n, err := strconv.Atoi(string(m[len("&gt;&gt;"):]))
		if err != nil {
			return m
		}
		return []byte(postLinkHTML(n))
	})
}

type greentextRenderer struct {
	html.Config
}

func newGreentextRenderer() renderer.NodeRenderer {
	return &greentextRenderer{Config: html.NewConfig()}
}

func (r *greentextRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindGreentext, r.renderGreentext)
}

func (r *greentextRenderer) renderGreentext(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(`<span class="greentext">`)
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		value := bytes.TrimRight(line.Value(source), "\r\n")
		_, _ = w.Write(linkPosts(util.EscapeHTML(value)))
		if i < lines.Len()-1 {
			_, _ = w.WriteString("<br>")
		}
	}
	_, _ = w.WriteString("</span>\n")
	return ast.WalkSkipChildren, nil
}
