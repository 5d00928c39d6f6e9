// Package editor models the composed message as an explicit tree of
// typed nodes (text runs, mention markers, hard breaks) with an
// explicit caret, replacing the browser's live editable surface.
// Rendering to markup is a pure projection over the tree.
package editor

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"pagechat/internal/models"
)

// Format is the inline formatting carried by a text run.
type Format struct {
	Bold      bool
	Italic    bool
	Underline bool
	Link      string
}

type NodeKind int

const (
	KindText NodeKind = iota
	KindMention
	KindBreak
)

// Node is one inline element of a block: a formatted text run, a
// mention marker, or a hard line break.
type Node struct {
	Kind    NodeKind
	Text    string
	Format  Format
	Mention models.UserMention
}

type ListKind int

const (
	ListNone ListKind = iota
	ListBullet
	ListNumber
)

// Block is one paragraph or list item.
type Block struct {
	List  ListKind
	Nodes []*Node
}

// Caret addresses a position: rune offset Offset inside text node
// Node of block Block. Node == len(nodes) means end of block.
type Caret struct {
	Block  int
	Node   int
	Offset int
}

// Selection spans from Start to End. Start == End is a collapsed
// selection (a bare caret).
type Selection struct {
	Start Caret
	End   Caret
}

func (s Selection) collapsed() bool {
	return s.Start == s.End
}

func (c Caret) less(o Caret) bool {
	if c.Block != o.Block {
		return c.Block < o.Block
	}
	if c.Node != o.Node {
		return c.Node < o.Node
	}
	return c.Offset < o.Offset
}

// Document is an ordered sequence of blocks.
type Document struct {
	blocks []*Block
}

func NewDocument() *Document {
	return &Document{blocks: []*Block{{}}}
}

func (d *Document) block(i int) *Block {
	return d.blocks[i]
}

// End returns the caret at the end of the document.
func (d *Document) End() Caret {
	b := len(d.blocks) - 1
	blk := d.blocks[b]
	n := len(blk.Nodes)
	if n > 0 && blk.Nodes[n-1].Kind == KindText {
		return Caret{Block: b, Node: n - 1, Offset: len([]rune(blk.Nodes[n-1].Text))}
	}
	return Caret{Block: b, Node: n}
}

// InsertText inserts s at c and returns the caret after the inserted
// text.
func (d *Document) InsertText(c Caret, s string) Caret {
	if s == "" {
		return c
	}
	blk := d.blocks[c.Block]

	if c.Node < len(blk.Nodes) && blk.Nodes[c.Node].Kind == KindText {
		n := blk.Nodes[c.Node]
		runes := []rune(n.Text)
		off := clamp(c.Offset, 0, len(runes))
		n.Text = string(runes[:off]) + s + string(runes[off:])
		return Caret{Block: c.Block, Node: c.Node, Offset: off + len([]rune(s))}
	}

	n := &Node{Kind: KindText, Text: s}
	blk.Nodes = insertNodes(blk.Nodes, c.Node, n)
	return Caret{Block: c.Block, Node: c.Node, Offset: len([]rune(s))}
}

// InsertBreak inserts a hard line break at c.
func (d *Document) InsertBreak(c Caret) Caret {
	blk := d.blocks[c.Block]
	idx := d.splitAt(c)
	blk.Nodes = insertNodes(blk.Nodes, idx, &Node{Kind: KindBreak})
	return Caret{Block: c.Block, Node: idx + 1}
}

// SplitBlock splits the block at c into two, the second inheriting
// the first's list kind.
func (d *Document) SplitBlock(c Caret) Caret {
	blk := d.blocks[c.Block]
	idx := d.splitAt(c)

	rest := append([]*Node(nil), blk.Nodes[idx:]...)
	blk.Nodes = blk.Nodes[:idx]

	next := &Block{List: blk.List, Nodes: rest}
	d.blocks = append(d.blocks, nil)
	copy(d.blocks[c.Block+2:], d.blocks[c.Block+1:])
	d.blocks[c.Block+1] = next

	return Caret{Block: c.Block + 1, Node: 0}
}

// splitAt splits the text node containing c (if c falls strictly
// inside one) and returns the node index at which c now sits.
func (d *Document) splitAt(c Caret) int {
	blk := d.blocks[c.Block]
	if c.Node >= len(blk.Nodes) || blk.Nodes[c.Node].Kind != KindText {
		return c.Node
	}
	runes := []rune(blk.Nodes[c.Node].Text)
	off := clamp(c.Offset, 0, len(runes))
	if off == 0 {
		return c.Node
	}
	if off == len(runes) {
		return c.Node + 1
	}
	n := blk.Nodes[c.Node]
	tail := &Node{Kind: KindText, Text: string(runes[off:]), Format: n.Format}
	n.Text = string(runes[:off])
	blk.Nodes = insertNodes(blk.Nodes, c.Node+1, tail)
	return c.Node + 1
}

// Trigger records where an active @-token begins, so a mention marker
// can be spliced in at the exact offset later.
type Trigger struct {
	Block       int
	Node        int
	CaretOffset int
	TokenLen    int
	Query       string
}

// TriggerAt inspects the text node containing c. The substring from
// node start to the caret is split on whitespace; if the last
// fragment starts with "@" an active trigger is returned, otherwise
// nil.
func (d *Document) TriggerAt(c Caret) *Trigger {
	if c.Block < 0 || c.Block >= len(d.blocks) {
		return nil
	}
	blk := d.blocks[c.Block]
	if c.Node < 0 || c.Node >= len(blk.Nodes) || blk.Nodes[c.Node].Kind != KindText {
		return nil
	}

	runes := []rune(blk.Nodes[c.Node].Text)
	off := clamp(c.Offset, 0, len(runes))

	start := 0
	for i, r := range runes[:off] {
		if unicode.IsSpace(r) {
			start = i + 1
		}
	}
	token := string(runes[start:off])
	if !strings.HasPrefix(token, "@") {
		return nil
	}

	return &Trigger{
		Block:       c.Block,
		Node:        c.Node,
		CaretOffset: off,
		TokenLen:    off - start,
		Query:       strings.TrimPrefix(token, "@"),
	}
}

// InsertMention replaces the trigger's @-token with a mention marker
// followed by a literal space, and returns the caret after the space.
func (d *Document) InsertMention(tr *Trigger, m models.UserMention) (Caret, error) {
	if tr == nil {
		return Caret{}, fmt.Errorf("no active mention trigger")
	}
	if tr.Block >= len(d.blocks) {
		return Caret{}, fmt.Errorf("mention trigger no longer valid")
	}
	blk := d.blocks[tr.Block]
	if tr.Node >= len(blk.Nodes) || blk.Nodes[tr.Node].Kind != KindText {
		return Caret{}, fmt.Errorf("mention trigger no longer valid")
	}

	n := blk.Nodes[tr.Node]
	runes := []rune(n.Text)
	start := tr.CaretOffset - tr.TokenLen
	if start < 0 || tr.CaretOffset > len(runes) {
		return Caret{}, fmt.Errorf("mention trigger no longer valid")
	}

	before := string(runes[:start])
	after := string(runes[tr.CaretOffset:])

	replacement := make([]*Node, 0, 4)
	if before != "" {
		replacement = append(replacement, &Node{Kind: KindText, Text: before, Format: n.Format})
	}
	replacement = append(replacement, &Node{Kind: KindMention, Mention: m})
	spaceIdx := len(replacement)
	replacement = append(replacement, &Node{Kind: KindText, Text: " "})
	if after != "" {
		replacement = append(replacement, &Node{Kind: KindText, Text: after, Format: n.Format})
	}

	blk.Nodes = replaceNode(blk.Nodes, tr.Node, replacement)

	return Caret{Block: tr.Block, Node: tr.Node + spaceIdx, Offset: 1}, nil
}

// HTML projects the tree to markup. Consecutive list blocks of the
// same kind are grouped under a single ul/ol.
func (d *Document) HTML() string {
	var b strings.Builder
	i := 0
	for i < len(d.blocks) {
		blk := d.blocks[i]
		if blk.List == ListNone {
			b.WriteString("<p>")
			renderInline(&b, blk.Nodes)
			b.WriteString("</p>")
			i++
			continue
		}

		tag := "ul"
		if blk.List == ListNumber {
			tag = "ol"
		}
		b.WriteString("<" + tag + ">")
		for i < len(d.blocks) && d.blocks[i].List == blk.List {
			b.WriteString("<li>")
			renderInline(&b, d.blocks[i].Nodes)
			b.WriteString("</li>")
			i++
		}
		b.WriteString("</" + tag + ">")
	}
	return b.String()
}

func renderInline(b *strings.Builder, nodes []*Node) {
	for _, n := range nodes {
		switch n.Kind {
		case KindBreak:
			b.WriteString("<br/>")
		case KindMention:
			fmt.Fprintf(b, `<span data-mention="%s" data-email="%s" class="mention">@%s</span>`,
				html.EscapeString(n.Mention.ID), html.EscapeString(n.Mention.Email),
				html.EscapeString(n.Mention.DisplayName))
		case KindText:
			var pre, post string
			if n.Format.Link != "" {
				pre += `<a href="` + html.EscapeString(n.Format.Link) + `">`
				post = "</a>" + post
			}
			if n.Format.Bold {
				pre += "<b>"
				post = "</b>" + post
			}
			if n.Format.Italic {
				pre += "<i>"
				post = "</i>" + post
			}
			if n.Format.Underline {
				pre += "<u>"
				post = "</u>" + post
			}
			b.WriteString(pre)
			b.WriteString(html.EscapeString(n.Text))
			b.WriteString(post)
		}
	}
}

// PlainText renders only the visible text: run text, mention labels
// as "@Name", breaks and block boundaries as newlines.
func (d *Document) PlainText() string {
	var b strings.Builder
	for i, blk := range d.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, n := range blk.Nodes {
			switch n.Kind {
			case KindBreak:
				b.WriteString("\n")
			case KindMention:
				b.WriteString("@" + n.Mention.DisplayName)
			case KindText:
				b.WriteString(n.Text)
			}
		}
	}
	return b.String()
}

func insertNodes(nodes []*Node, at int, add ...*Node) []*Node {
	at = clamp(at, 0, len(nodes))
	out := make([]*Node, 0, len(nodes)+len(add))
	out = append(out, nodes[:at]...)
	out = append(out, add...)
	out = append(out, nodes[at:]...)
	return out
}

func replaceNode(nodes []*Node, at int, replacement []*Node) []*Node {
	out := make([]*Node, 0, len(nodes)-1+len(replacement))
	out = append(out, nodes[:at]...)
	out = append(out, replacement...)
	out = append(out, nodes[at+1:]...)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
