package rewrite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/flowfix/pkg/comments"
	"github.com/yaklabco/flowfix/pkg/fix"
	"github.com/yaklabco/flowfix/pkg/indent"
	"github.com/yaklabco/flowfix/pkg/jast"
)

// Options configure edit generation.
type Options struct {
	// Indent describes one indentation level of the source.
	Indent indent.Options

	// Comments is the line comment index of the source. It is built from
	// the snapshot when nil.
	Comments *comments.Index
}

// ComputeEdits turns the overlay into text edits against snap.Content.
// Untouched regions are never part of an edit. Conflicting overlay entries
// yield a *ConflictError and no edits.
func (rw *Rewrite) ComputeEdits(snap *jast.FileSnapshot, opts Options) (*fix.MultiEdit, error) {
	if ranges := rw.structuralConflicts(); len(ranges) > 0 {
		return nil, &ConflictError{Ranges: ranges}
	}
	for key := range rw.slots {
		if !key.parent.HasProp(key.prop) {
			return nil, &SlotError{Kind: key.parent.Kind, Prop: key.prop, Op: "set"}
		}
	}
	if opts.Comments == nil {
		opts.Comments = comments.FromSnapshot(snap)
	}

	e := &engine{rw: rw, snap: snap, src: snap.Content, opts: opts, eol: snap.LineEnding()}
	out := &collector{}
	if snap.Root != nil {
		if err := e.visit(snap.Root, out); err != nil {
			return nil, err
		}
	}
	if e.err != nil {
		return nil, e.err
	}

	edits := fix.NewMultiEdit(out.edits...)
	if _, err := edits.Prepare(len(e.src)); err != nil {
		var ce *fix.ConflictError
		if errors.As(err, &ce) {
			return nil, conflictFromEdits(ce)
		}
		return nil, fmt.Errorf("rewrite: %w", err)
	}
	return edits, nil
}

func conflictFromEdits(ce *fix.ConflictError) *ConflictError {
	ranges := make([]jast.Range, 0, 2*len(ce.Conflicts))
	for _, c := range ce.Conflicts {
		ranges = append(ranges,
			jast.Range{Start: c.First.Offset, End: c.First.End()},
			jast.Range{Start: c.Second.Offset, End: c.Second.End()})
	}
	return &ConflictError{Ranges: normalizeRanges(ranges)}
}

// collector accumulates edits. Insertions at the same offset are joined in
// emission order so the set stays free of ambiguous ties.
type collector struct {
	edits []fix.TextEdit
}

func (c *collector) replace(start, end int, text string) {
	if start == end {
		c.insert(start, text)
		return
	}
	c.edits = append(c.edits, fix.TextEdit{Offset: start, Length: end - start, Text: text})
}

func (c *collector) remove(start, end int) {
	if start < end {
		c.replace(start, end, "")
	}
}

func (c *collector) insert(offset int, text string) {
	if text == "" {
		return
	}
	for i := range c.edits {
		if c.edits[i].Offset == offset && c.edits[i].IsInsert() {
			c.edits[i].Text += text
			return
		}
	}
	c.edits = append(c.edits, fix.TextEdit{Offset: offset, Text: text})
}

type listStyle uint8

const (
	styleLine listStyle = iota
	styleComma
	styleSpace
	styleCatches
)

func styleOf(parent *jast.Node, prop jast.Prop) (listStyle, string) {
	switch prop {
	case jast.PropStatements, jast.PropMembers, jast.PropCases:
		return styleLine, ""
	case jast.PropModifiers:
		return styleSpace, " "
	case jast.PropCatches:
		return styleCatches, " "
	case jast.PropTypes:
		if parent.Kind == jast.NodeCatch {
			return styleComma, " | "
		}
	default:
	}
	return styleComma, ", "
}

type engine struct {
	rw   *Rewrite
	snap *jast.FileSnapshot
	src  []byte
	opts Options
	eol  string
	err  error
}

func (e *engine) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *engine) visit(n *jast.Node, out *collector) error {
	for _, p := range n.Props() {
		var err error
		if p.IsList() {
			err = e.list(n, p, out)
		} else {
			err = e.slot(n, p, out)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) levelAt(offset int) int {
	return e.opts.Indent.Level(e.snap.Indentation(offset))
}

// replaceNode prints repl over the original range of n.
func (e *engine) replaceNode(n, repl *jast.Node, out *collector) {
	out.replace(n.Range.Start, n.Range.End, e.print(repl, e.levelAt(n.Range.Start)))
}

func (e *engine) slot(n *jast.Node, p jast.Prop, out *collector) error {
	orig := n.Child(p)
	if orig == nil {
		if v, ok := e.rw.slots[listKey{n, p}]; ok && v.node != nil {
			return e.insertSlot(n, p, v.node, out)
		}
		return nil
	}
	if repl, ok := e.rw.replaced[orig]; ok {
		e.replaceNode(orig, repl, out)
		return nil
	}
	if e.rw.effectivelyRemoved(orig) {
		return e.removeSlot(n, p, orig, out)
	}
	return e.visit(orig, out)
}

func (e *engine) removeSlot(n *jast.Node, p jast.Prop, orig *jast.Node, out *collector) error {
	switch {
	case n.Kind == jast.NodeIf && p == jast.PropElse:
		out.remove(n.Child(jast.PropThen).Range.End, orig.Range.End)
	case n.Kind == jast.NodeFragment && p == jast.PropInit:
		eq := e.lastIndexBefore('=', orig.Range.Start, n.Range.Start)
		if eq < 0 {
			return &SlotError{Kind: n.Kind, Prop: p, Op: "remove"}
		}
		out.remove(e.trimSpaceBack(eq), orig.Range.End)
	case n.Kind == jast.NodeReturn && p == jast.PropExpr:
		out.remove(n.Range.Start+len("return"), orig.Range.End)
	case n.Kind == jast.NodeTry && p == jast.PropFinally:
		out.remove(e.tryTail(n), orig.Range.End)
	case n.Kind == jast.NodeAssert && p == jast.PropMessage:
		out.remove(n.Child(jast.PropCond).Range.End, orig.Range.End)
	default:
		return &SlotError{Kind: n.Kind, Prop: p, Op: "remove"}
	}
	return nil
}

func (e *engine) insertSlot(n *jast.Node, p jast.Prop, child *jast.Node, out *collector) error {
	text := e.print(child, e.levelAt(n.Range.Start))
	switch {
	case n.Kind == jast.NodeIf && p == jast.PropElse:
		e.insert(out, n.Child(jast.PropThen).Range.End, " else "+text)
	case n.Kind == jast.NodeFragment && p == jast.PropInit:
		e.insert(out, n.Range.End, " = "+text)
	case n.Kind == jast.NodeReturn && p == jast.PropExpr:
		e.insert(out, n.Range.Start+len("return"), " "+text)
	case n.Kind == jast.NodeTry && p == jast.PropFinally:
		e.insert(out, e.tryTail(n), " finally "+text)
	case n.Kind == jast.NodeAssert && p == jast.PropMessage:
		e.insert(out, n.Child(jast.PropCond).Range.End, " : "+text)
	default:
		return &SlotError{Kind: n.Kind, Prop: p, Op: "set"}
	}
	return nil
}

// tryTail is the end of the last catch clause, or of the try body.
func (e *engine) tryTail(try *jast.Node) int {
	if catches := try.List(jast.PropCatches); len(catches) > 0 {
		return catches[len(catches)-1].Range.End
	}
	return try.Child(jast.PropBody).Range.End
}

// insert adds text at offset unless offset would split or extend a line
// comment, in which case the text moves to the start of the next line.
func (e *engine) insert(out *collector, offset int, text string) {
	safe, lead := e.opts.Comments.SafeInsertPoint(offset, e.src, e.eol)
	if safe != offset || lead != "" {
		text = strings.TrimLeft(strings.TrimPrefix(text, e.eol), " ")
		text = lead + e.snap.Indentation(offset) + text
		if !strings.HasSuffix(text, e.eol) {
			text += e.eol
		}
	}
	out.insert(safe, text)
}

func (e *engine) list(n *jast.Node, p jast.Prop, out *collector) error {
	orig := n.List(p)
	target, ok := e.rw.lists[listKey{n, p}]
	if !ok {
		target = orig
	}

	filtered := make([]*jast.Node, 0, len(target))
	for _, c := range target {
		if c.Parent == n && c.Prop == p && e.rw.effectivelyRemoved(c) {
			continue
		}
		filtered = append(filtered, c)
	}

	steps := align(orig, filtered)
	prevKept := -1
	for i := 0; i < len(steps); {
		s := steps[i]
		if s.kind == stepKeep {
			child := orig[s.orig]
			if repl, ok := e.rw.replaced[child]; ok {
				e.replaceNode(child, repl, out)
			} else if err := e.visit(child, out); err != nil {
				return err
			}
			prevKept = s.orig
			i++
			continue
		}

		first, last := -1, -1
		var inserted []*jast.Node
		for ; i < len(steps) && steps[i].kind != stepKeep; i++ {
			switch steps[i].kind {
			case stepDelete:
				if first < 0 {
					first = steps[i].orig
				}
				last = steps[i].orig
			case stepInsert:
				inserted = append(inserted, filtered[steps[i].target])
			case stepKeep:
			}
		}
		nextKept := len(orig)
		if i < len(steps) {
			nextKept = steps[i].orig
		}

		var err error
		switch {
		case first >= 0 && len(inserted) > 0:
			e.replaceRun(n, p, orig, first, last, inserted, out)
		case first >= 0:
			err = e.removeRun(n, p, orig, first, last, out)
		default:
			err = e.insertRun(n, p, orig, prevKept, nextKept, inserted, out)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// listIndent is the leading whitespace of elements of a line-style list.
func (e *engine) listIndent(n *jast.Node, orig []*jast.Node) string {
	if n.Kind == jast.NodeCompilationUnit {
		return ""
	}
	if len(orig) > 0 && e.snap.LineStart(orig[0].Range.Start) != e.snap.LineStart(n.Range.Start) {
		return e.snap.Indentation(orig[0].Range.Start)
	}
	return e.snap.Indentation(n.Range.Start) + e.opts.Indent.Indent(1)
}

func (e *engine) printAll(nodes []*jast.Node, level int) []string {
	items := make([]string, len(nodes))
	for i, n := range nodes {
		items[i] = e.print(n, level)
	}
	return items
}

func (e *engine) replaceRun(n *jast.Node, p jast.Prop, orig []*jast.Node, first, last int, inserted []*jast.Node, out *collector) {
	start, end := orig[first].Range.Start, orig[last].Range.End
	style, sep := styleOf(n, p)
	if style == styleLine {
		ind := e.listIndent(n, orig)
		items := e.printAll(inserted, e.opts.Indent.Level(ind))
		out.replace(start, end, strings.Join(items, e.eol+ind))
		return
	}
	items := e.printAll(inserted, e.levelAt(n.Range.Start))
	out.replace(start, end, strings.Join(items, sep))
}

func (e *engine) removeRun(n *jast.Node, p jast.Prop, orig []*jast.Node, first, last int, out *collector) error {
	start, end := orig[first].Range.Start, orig[last].Range.End
	style, sep := styleOf(n, p)

	switch style {
	case styleLine:
		ls := e.snap.LineStart(start)
		if !e.onlySpace(ls, start) {
			out.remove(e.trimSpaceBack(start), end)
			return nil
		}
		tail := e.trailing(end)
		if nl := e.lineBreakEnd(tail); nl >= 0 {
			out.remove(ls, nl)
		} else if tail == len(e.src) {
			out.remove(ls, tail)
		} else {
			out.remove(start, e.skipSpace(end))
		}
	case styleSpace:
		out.remove(start, e.skipSpace(end))
	case styleCatches:
		from := e.tryBodyEnd(n)
		if first > 0 {
			from = orig[first-1].Range.End
		}
		out.remove(from, end)
	case styleComma:
		sepChar := strings.TrimSpace(sep)[0]
		switch {
		case first > 0:
			prev := orig[first-1].Range.End
			if e.hasLineComment(prev, start) {
				if at := e.indexFrom(prev, sepChar); at >= 0 && at < start {
					out.remove(at, at+1)
				}
				out.remove(start, end)
			} else {
				out.remove(prev, end)
			}
		case last < len(orig)-1:
			next := orig[last+1].Range.Start
			if e.hasLineComment(end, next) {
				at := e.indexFrom(end, sepChar)
				if at < 0 || at >= next {
					at = end - 1
				}
				out.remove(start, at+1)
			} else {
				out.remove(start, next)
			}
		case p == jast.PropThrows:
			kw := e.lastWordBefore("throws", start)
			if kw < 0 {
				return &SlotError{Kind: n.Kind, Prop: p, Op: "remove"}
			}
			out.remove(e.trimSpaceBack(kw), end)
		case p == jast.PropParams || p == jast.PropArgs || p == jast.PropUpdates:
			out.remove(start, end)
		default:
			return &SlotError{Kind: n.Kind, Prop: p, Op: "empty"}
		}
	}
	return nil
}

func (e *engine) insertRun(n *jast.Node, p jast.Prop, orig []*jast.Node, prev, next int, inserted []*jast.Node, out *collector) error {
	style, sep := styleOf(n, p)

	switch style {
	case styleLine:
		return e.insertLines(n, orig, prev, next, inserted, out)
	case styleSpace, styleCatches:
		items := strings.Join(e.printAll(inserted, e.levelAt(n.Range.Start)), sep)
		switch {
		case prev >= 0:
			e.insert(out, orig[prev].Range.End, sep+items)
		case next < len(orig):
			e.insert(out, orig[next].Range.Start, items+sep)
		case style == styleCatches:
			e.insert(out, e.tryBodyEnd(n), sep+items)
		default:
			at, err := e.declStart(n)
			if err != nil {
				return err
			}
			e.insert(out, at, items+sep)
		}
		return nil
	case styleComma:
	}

	items := strings.Join(e.printAll(inserted, e.levelAt(n.Range.Start)), sep)
	switch {
	case prev >= 0 && next < len(orig):
		e.insert(out, orig[prev].Range.End, sep+items)
	case prev >= 0:
		anchor := orig[prev]
		if commentEnd, ok := e.lineCommentAfter(anchor.Range.End); ok {
			// Keep the separator before the comment and start the new
			// items on the following line.
			out.insert(anchor.Range.End, strings.TrimRight(sep, " "))
			ind := e.snap.Indentation(anchor.Range.Start)
			if nl := e.lineBreakEnd(commentEnd); nl >= 0 {
				out.insert(nl, ind+items+e.eol)
			} else {
				out.insert(commentEnd, e.eol+ind+items)
			}
			return nil
		}
		e.insert(out, anchor.Range.End, sep+items)
	case next < len(orig):
		e.insert(out, orig[next].Range.Start, items+sep)
	default:
		at, prefix, err := e.emptyListOffset(n, p)
		if err != nil {
			return err
		}
		e.insert(out, at, prefix+items)
	}
	return nil
}

func (e *engine) insertLines(n *jast.Node, orig []*jast.Node, prev, next int, inserted []*jast.Node, out *collector) error {
	ind := e.listIndent(n, orig)
	items := e.printAll(inserted, e.opts.Indent.Level(ind))

	var lines strings.Builder
	for _, item := range items {
		lines.WriteString(ind + item + e.eol)
	}
	joined := strings.Join(items, e.eol+ind)

	switch {
	case prev >= 0:
		end := orig[prev].Range.End
		tail := e.trailing(end)
		switch nl := e.lineBreakEnd(tail); {
		case nl >= 0:
			e.insert(out, nl, lines.String())
		case tail == len(e.src):
			out.insert(tail, e.eol+ind+joined)
		case e.closesList(n, tail):
			closing := e.eol + e.snap.Indentation(n.Range.Start)
			if e.onlySpace(end, tail) {
				out.replace(end, tail, e.eol+ind+joined+closing)
			} else {
				e.insert(out, end, e.eol+ind+joined)
				out.replace(e.trimSpaceBack(tail), tail, closing)
			}
		default:
			e.insert(out, end, e.eol+ind+joined)
		}
	case next < len(orig):
		start := orig[next].Range.Start
		ls := e.snap.LineStart(start)
		if e.onlySpace(ls, start) {
			e.insert(out, ls, lines.String())
		} else {
			e.insert(out, start, joined+e.eol+ind)
		}
	default:
		return e.insertIntoEmpty(n, ind, items, lines.String(), out)
	}
	return nil
}

// closesList reports whether offset is the closing brace of a braced list
// owner.
func (e *engine) closesList(n *jast.Node, offset int) bool {
	switch n.Kind {
	case jast.NodeBlock, jast.NodeClass, jast.NodeSwitch:
		return offset == n.Range.End-1 && e.src[offset] == '}'
	}
	return false
}

func (e *engine) insertIntoEmpty(n *jast.Node, ind string, items []string, lines string, out *collector) error {
	switch n.Kind {
	case jast.NodeCompilationUnit:
		out.insert(len(e.src), e.eol+strings.Join(items, e.eol+e.eol)+e.eol)
	case jast.NodeBlock, jast.NodeClass, jast.NodeSwitch:
		from := n.Range.Start
		if n.Kind == jast.NodeSwitch {
			from = n.Child(jast.PropExpr).Range.End
		}
		open := e.indexFrom(from, '{')
		closing := n.Range.End - 1
		if open < 0 || closing <= open || e.src[closing] != '}' {
			return &SlotError{Kind: n.Kind, Prop: jast.PropStatements, Op: "insert into"}
		}
		closingIndent := e.snap.Indentation(n.Range.Start)
		switch ls := e.snap.LineStart(closing); {
		case e.onlySpace(open+1, closing):
			out.replace(open+1, closing, e.eol+lines+closingIndent)
		case e.onlySpace(ls, closing) && ls > open:
			e.insert(out, ls, lines)
		default:
			out.insert(closing, e.eol+lines+closingIndent)
		}
	case jast.NodeCase:
		from := n.Range.Start + len("default")
		if label := n.Child(jast.PropExpr); label != nil {
			from = label.Range.End
		}
		colon := e.indexFrom(from, ':')
		if colon < 0 {
			return &SlotError{Kind: n.Kind, Prop: jast.PropStatements, Op: "insert into"}
		}
		tail := e.trailing(colon + 1)
		if nl := e.lineBreakEnd(tail); nl >= 0 {
			e.insert(out, nl, lines)
		} else {
			out.insert(colon+1, e.eol+ind+strings.Join(items, e.eol+ind))
		}
	default:
		return &SlotError{Kind: n.Kind, Prop: jast.PropStatements, Op: "insert into"}
	}
	return nil
}

// emptyListOffset finds where the first element of an empty comma list goes
// and the text that must precede it.
func (e *engine) emptyListOffset(n *jast.Node, p jast.Prop) (int, string, error) {
	switch {
	case p == jast.PropParams && n.Kind == jast.NodeMethod,
		p == jast.PropArgs && (n.Kind == jast.NodeCall || n.Kind == jast.NodeNew):
		if open := e.openParen(n); open >= 0 {
			return open + 1, "", nil
		}
	case p == jast.PropThrows && n.Kind == jast.NodeMethod:
		if open := e.openParen(n); open >= 0 {
			from := open + 1
			if params := n.List(jast.PropParams); len(params) > 0 {
				from = params[len(params)-1].Range.End
			}
			if closing := e.indexFrom(from, ')'); closing >= 0 {
				return closing + 1, " throws ", nil
			}
		}
	default:
	}
	return 0, "", &SlotError{Kind: n.Kind, Prop: p, Op: "insert into"}
}

// openParen returns the offset of the '(' opening a parameter or argument
// list.
func (e *engine) openParen(n *jast.Node) int {
	from := n.Range.Start
	switch n.Kind {
	case jast.NodeMethod:
		if t := n.Child(jast.PropType); t != nil {
			from = t.Range.End
		}
		if at := e.wordFrom(n.Text, from); at >= 0 {
			from = at + len(n.Text)
		}
	case jast.NodeCall:
		if t := n.Child(jast.PropTarget); t != nil {
			from = t.Range.End
		}
	case jast.NodeNew:
		if t := n.Child(jast.PropType); t != nil {
			from = t.Range.End
		}
	default:
	}
	return e.indexFrom(from, '(')
}

// declStart is where modifiers of a declaration without any go.
func (e *engine) declStart(n *jast.Node) (int, error) {
	switch n.Kind {
	case jast.NodeLocalVar, jast.NodeField, jast.NodeParam:
		if t := n.Child(jast.PropType); t != nil {
			return t.Range.Start, nil
		}
	case jast.NodeMethod:
		if t := n.Child(jast.PropType); t != nil {
			return t.Range.Start, nil
		}
		if at := e.wordFrom(n.Text, n.Range.Start); at >= 0 {
			return at, nil
		}
	case jast.NodeCatch:
		if types := n.List(jast.PropTypes); len(types) > 0 {
			return types[0].Range.Start, nil
		}
	case jast.NodeClass:
		for _, kw := range []string{"class", "interface", "enum"} {
			if at := e.wordFrom(kw, n.Range.Start); at >= 0 && at < n.Range.End {
				return at, nil
			}
		}
	default:
	}
	return 0, &SlotError{Kind: n.Kind, Prop: jast.PropModifiers, Op: "insert into"}
}

func (e *engine) tryBodyEnd(try *jast.Node) int {
	return try.Child(jast.PropBody).Range.End
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func (e *engine) onlySpace(from, to int) bool {
	for i := from; i < to; i++ {
		if !isSpace(e.src[i]) && e.src[i] != '\n' && e.src[i] != '\r' {
			return false
		}
	}
	return true
}

func (e *engine) skipSpace(offset int) int {
	for offset < len(e.src) && isSpace(e.src[offset]) {
		offset++
	}
	return offset
}

func (e *engine) trimSpaceBack(offset int) int {
	for offset > 0 && isSpace(e.src[offset-1]) {
		offset--
	}
	return offset
}

func (e *engine) lineEndFrom(offset int) int {
	for offset < len(e.src) && e.src[offset] != '\n' && e.src[offset] != '\r' {
		offset++
	}
	return offset
}

// lineBreakEnd returns the offset after the line break at offset, or -1.
func (e *engine) lineBreakEnd(offset int) int {
	switch {
	case offset < len(e.src) && e.src[offset] == '\n':
		return offset + 1
	case offset+1 < len(e.src) && e.src[offset] == '\r' && e.src[offset+1] == '\n':
		return offset + 2
	}
	return -1
}

// trailing skips whitespace and a comment that follow end on the same line.
func (e *engine) trailing(end int) int {
	pos := e.skipSpace(end)
	if commentEnd, ok := e.lineCommentAfter(end); ok {
		return commentEnd
	}
	for _, c := range e.snap.Comments {
		if c.Kind == jast.CommentBlock && c.Range.Start == pos && e.lineEndFrom(pos) >= c.Range.End {
			return e.skipSpace(c.Range.End)
		}
	}
	return pos
}

// lineCommentAfter returns the end of a line comment that follows end on the
// same line, separated only by whitespace.
func (e *engine) lineCommentAfter(end int) (int, bool) {
	pos := e.skipSpace(end)
	if pos+1 < len(e.src) && e.src[pos] == '/' && e.src[pos+1] == '/' {
		return e.lineEndFrom(pos), true
	}
	return 0, false
}

func (e *engine) hasLineComment(from, to int) bool {
	for _, c := range e.snap.Comments {
		if c.Kind == jast.CommentLine && c.Range.Start >= from && c.Range.Start < to {
			return true
		}
	}
	return false
}

func (e *engine) indexFrom(offset int, ch byte) int {
	for i := offset; i >= 0 && i < len(e.src); i++ {
		if e.src[i] == ch {
			return i
		}
	}
	return -1
}

func (e *engine) lastIndexBefore(ch byte, before, limit int) int {
	for i := before - 1; i >= limit && i >= 0; i-- {
		if e.src[i] == ch {
			return i
		}
	}
	return -1
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// wordFrom finds word as a whole identifier at or after offset.
func (e *engine) wordFrom(word string, offset int) int {
	for i := max(offset, 0); i+len(word) <= len(e.src); i++ {
		if string(e.src[i:i+len(word)]) != word {
			continue
		}
		if i > 0 && isIdentByte(e.src[i-1]) {
			continue
		}
		if j := i + len(word); j < len(e.src) && isIdentByte(e.src[j]) {
			continue
		}
		return i
	}
	return -1
}

// lastWordBefore finds word as a whole identifier ending before offset,
// separated from it only by whitespace.
func (e *engine) lastWordBefore(word string, offset int) int {
	end := offset
	for end > 0 && (isSpace(e.src[end-1]) || e.src[end-1] == '\n' || e.src[end-1] == '\r') {
		end--
	}
	start := end - len(word)
	if start < 0 || string(e.src[start:end]) != word {
		return -1
	}
	if start > 0 && isIdentByte(e.src[start-1]) {
		return -1
	}
	return start
}

// placeholderText is the source text of a moved or copied subtree with the
// overlay entries inside it applied, re-indented to level.
func (e *engine) placeholderText(src *jast.Node, level int) string {
	sub := &collector{}
	if err := e.visit(src, sub); err != nil {
		e.fail(err)
		return ""
	}

	start, end := src.Range.Start, src.Range.End
	local := make([]fix.TextEdit, 0, len(sub.edits))
	for _, ed := range sub.edits {
		if ed.Offset < start || ed.End() > end {
			e.fail(&ConflictError{Ranges: []jast.Range{src.Range, {Start: ed.Offset, End: ed.End()}}})
			return ""
		}
		ed.Offset -= start
		local = append(local, ed)
	}
	prepared, err := fix.PrepareEdits(local, end-start)
	if err != nil {
		e.fail(fmt.Errorf("rewrite: edits inside moved range: %w", err))
		return ""
	}
	text := string(fix.ApplyEdits(e.src[start:end], prepared))
	return e.opts.Indent.Reindent(text, e.levelAt(start), level)
}
