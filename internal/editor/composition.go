package editor

import (
	"io"
	"strings"

	"pagechat/internal/chat"
	"pagechat/internal/models"
)

// Composition is one open input surface: the document being composed,
// the caret and selection, the pending mention set, and the staged
// files. The active mention trigger is valid only between mutations;
// every edit or caret move re-evaluates it.
type Composition struct {
	doc     *Document
	caret   Caret
	sel     Selection
	focused bool
	trigger *Trigger

	mentions []models.UserMention
	files    []chat.StagedFile

	html string
	text string
}

func NewComposition() *Composition {
	c := &Composition{doc: NewDocument()}
	c.caret = c.doc.End()
	c.sel = Selection{Start: c.caret, End: c.caret}
	c.resync()
	return c
}

func (c *Composition) Focus()        { c.focused = true }
func (c *Composition) Blur()         { c.focused = false }
func (c *Composition) Focused() bool { return c.focused }

// HTML returns the serialized markup of the whole surface, and Text
// its plain-text rendering; both are resynchronized on every mutation.
func (c *Composition) HTML() string { return c.html }
func (c *Composition) Text() string { return c.text }

func (c *Composition) Document() *Document { return c.doc }
func (c *Composition) Caret() Caret        { return c.caret }

// Trigger returns the active mention trigger, or nil when the caret
// is not inside an @-token.
func (c *Composition) Trigger() *Trigger { return c.trigger }

func (c *Composition) Mentions() []models.UserMention {
	return append([]models.UserMention(nil), c.mentions...)
}

func (c *Composition) SetCaret(caret Caret) {
	c.caret = caret
	c.sel = Selection{Start: caret, End: caret}
	c.refreshTrigger()
}

func (c *Composition) Select(start, end Caret) {
	c.sel = Selection{Start: start, End: end}
	c.caret = end
	c.refreshTrigger()
}

// SaveSelection captures the current selection so that text can be
// inserted at it later, after some other UI (an emoji picker) has
// stolen focus and moved the live selection.
func (c *Composition) SaveSelection() Selection {
	return c.sel
}

// InsertText types s at the caret, replacing the selection if one is
// active.
func (c *Composition) InsertText(s string) {
	if !c.sel.collapsed() {
		rb := c.doc.isolateBounds(c.sel)
		c.caret = c.doc.deleteBounds(rb)
	}
	c.caret = c.doc.InsertText(c.caret, s)
	c.sel = Selection{Start: c.caret, End: c.caret}
	c.resync()
}

// InsertTextAt inserts s (an emoji symbol, typically) at a previously
// saved selection, replacing whatever it covered.
func (c *Composition) InsertTextAt(saved Selection, s string) {
	c.focused = true
	at := saved.Start
	if !saved.collapsed() {
		rb := c.doc.isolateBounds(saved)
		at = c.doc.deleteBounds(rb)
	}
	c.caret = c.doc.InsertText(at, s)
	c.sel = Selection{Start: c.caret, End: c.caret}
	c.resync()
}

func (c *Composition) InsertLineBreak() {
	c.caret = c.doc.InsertBreak(c.caret)
	c.sel = Selection{Start: c.caret, End: c.caret}
	c.resync()
}

func (c *Composition) InsertParagraph() {
	c.caret = c.doc.SplitBlock(c.caret)
	c.sel = Selection{Start: c.caret, End: c.caret}
	c.resync()
}

// AcceptSuggestion splices the selected candidate into the document
// at the recorded trigger and adds it to the pending mention set,
// unless an entry with the same email (case-insensitive) is already
// there.
func (c *Composition) AcceptSuggestion(m models.UserMention) error {
	caret, err := c.doc.InsertMention(c.trigger, m)
	if err != nil {
		return err
	}
	c.focused = true
	c.caret = caret
	c.sel = Selection{Start: caret, End: caret}
	c.addMention(m)
	c.resync()
	return nil
}

func (c *Composition) addMention(m models.UserMention) {
	for _, existing := range c.mentions {
		if strings.EqualFold(existing.Email, m.Email) {
			return
		}
	}
	c.mentions = append(c.mentions, m)
}

func (c *Composition) ToggleBold() {
	c.applyToRuns(func(runs []*Node) {
		on := !allRuns(runs, func(n *Node) bool { return n.Format.Bold })
		for _, r := range runs {
			r.Format.Bold = on
		}
	})
}

func (c *Composition) ToggleItalic() {
	c.applyToRuns(func(runs []*Node) {
		on := !allRuns(runs, func(n *Node) bool { return n.Format.Italic })
		for _, r := range runs {
			r.Format.Italic = on
		}
	})
}

func (c *Composition) ToggleUnderline() {
	c.applyToRuns(func(runs []*Node) {
		on := !allRuns(runs, func(n *Node) bool { return n.Format.Underline })
		for _, r := range runs {
			r.Format.Underline = on
		}
	})
}

func (c *Composition) SetLink(href string) {
	c.applyToRuns(func(runs []*Node) {
		for _, r := range runs {
			r.Format.Link = href
		}
	})
}

func (c *Composition) ClearFormatting() {
	c.applyToRuns(func(runs []*Node) {
		for _, r := range runs {
			r.Format = Format{}
		}
	})
}

// ToggleList switches the blocks covered by the selection to the
// given list kind, or back to plain paragraphs when already of that
// kind.
func (c *Composition) ToggleList(kind ListKind) {
	c.focused = true

	startBlock, endBlock := c.sel.Start.Block, c.sel.End.Block
	if endBlock < startBlock {
		startBlock, endBlock = endBlock, startBlock
	}

	all := true
	for i := startBlock; i <= endBlock; i++ {
		if c.doc.block(i).List != kind {
			all = false
			break
		}
	}
	for i := startBlock; i <= endBlock; i++ {
		if all {
			c.doc.block(i).List = ListNone
		} else {
			c.doc.block(i).List = kind
		}
	}
	c.resync()
}

// applyToRuns refocuses the surface, isolates the selection, and
// mutates the covered text runs. A collapsed selection is a no-op.
func (c *Composition) applyToRuns(mut func(runs []*Node)) {
	c.focused = true
	if c.sel.collapsed() {
		return
	}

	rb := c.doc.isolateBounds(c.sel)
	runs := textRuns(c.doc.coveredNodes(rb))
	if len(runs) == 0 {
		return
	}
	mut(runs)

	c.sel = Selection{
		Start: Caret{Block: rb.startBlock, Node: rb.startIdx},
		End:   Caret{Block: rb.endBlock, Node: rb.endIdx},
	}
	c.caret = c.sel.End
	c.trigger = nil
	c.resync()
}

// StageFile adds a file to the pending attachment list. The size cap
// is enforced here, before any upload is attempted; a staged file
// with the same name replaces the previous one.
func (c *Composition) StageFile(name string, size int64, data io.Reader) error {
	if size > chat.MaxAttachmentBytes {
		return chat.NewValidationError("File %s exceeds 5MB", name)
	}
	c.RemoveFile(name)
	c.files = append(c.files, chat.StagedFile{Name: name, Size: size, Data: data})
	return nil
}

func (c *Composition) RemoveFile(name string) {
	kept := c.files[:0]
	for _, f := range c.files {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	c.files = kept
}

func (c *Composition) Files() []chat.StagedFile {
	return append([]chat.StagedFile(nil), c.files...)
}

// Draft freezes the composition into the send pipeline's input.
func (c *Composition) Draft(page models.PageInfo) chat.Draft {
	return chat.Draft{
		HTML:     c.html,
		Mentions: c.Mentions(),
		Files:    c.Files(),
		Page:     page,
	}
}

// Reset clears the surface, the mention set, and the staged files,
// after a fully successful send.
func (c *Composition) Reset() {
	c.doc = NewDocument()
	c.caret = c.doc.End()
	c.sel = Selection{Start: c.caret, End: c.caret}
	c.trigger = nil
	c.mentions = nil
	c.files = nil
	c.resync()
}

func (c *Composition) resync() {
	c.html = c.doc.HTML()
	c.text = c.doc.PlainText()
	c.refreshTrigger()
}

func (c *Composition) refreshTrigger() {
	if !c.sel.collapsed() {
		c.trigger = nil
		return
	}
	c.trigger = c.doc.TriggerAt(c.caret)
}

func allRuns(runs []*Node, pred func(*Node) bool) bool {
	for _, r := range runs {
		if !pred(r) {
			return false
		}
	}
	return true
}
