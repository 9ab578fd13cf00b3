package gxml

import (
	"bytes"
	"io"
	"log/slog"
)

// elementFrame records one open element: its name, the arena mark
// taken just before the name was stored, and the index into the
// shared attribute workspace where this element's attributes begin.
type elementFrame struct {
	name      []byte
	mark      int
	attrStart int
}

// Parser is the low-level pull parser: it consumes a Source and yields
// a lazy sequence of Event values, coordinating the arena's
// stack-scoped release with the element stack.
//
// A Parser is not safe for concurrent use; exactly one goroutine may
// call Next at a time.
type Parser struct {
	src     Source
	arena   *arena
	cfg     *config
	entities *entityTable
	logger  *slog.Logger

	stack   []elementFrame
	attrBuf []Attr
	offset  int // bytes consumed from src so far, for error position context

	startedDocument bool
	complete        bool
	terminalErr     error

	pendingSelfClose []byte // set when the last StartElement was self-closing
}

// NewParser constructs a Parser over src. The arena, entity table,
// and element stack it allocates are released together when the
// caller stops calling Next (there is no explicit Close: teardown is
// simply ceasing to use the Parser).
func NewParser(src Source, opts ...Option) *Parser {
	cfg := defaultParserConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		// A nil logger would panic on first use; treat it the same as
		// never having called WithLogger.
		cfg.logger = slog.Default()
	}
	entities := newEntityTable()
	entities.logger = cfg.logger
	return &Parser{
		src:      src,
		arena:    newArena(4096),
		cfg:      cfg,
		entities: entities,
		logger:   cfg.logger,
		stack:    make([]elementFrame, 0, 16),
		attrBuf:  make([]Attr, 0, 64),
	}
}

// take consumes n bytes from src, tracking the total consumed for
// error position reporting.
func (p *Parser) take(n int) ([]byte, error) {
	b, err := p.src.Take(n)
	p.offset += len(b)
	return b, err
}

// toss discards n bytes from src, tracking the total consumed for
// error position reporting.
func (p *Parser) toss(n int) error {
	err := p.src.Toss(n)
	if err == nil {
		p.offset += n
	}
	return err
}

// Next advances the parser and returns the next event. It returns
// io.EOF once DocumentEnd has already been delivered. Any other
// non-nil error is terminal: the Parser permanently returns that same
// error value on every subsequent call.
func (p *Parser) Next() (Event, error) {
	if p.terminalErr != nil {
		return Event{}, p.terminalErr
	}
	if p.complete {
		return Event{}, io.EOF
	}
	if !p.startedDocument {
		p.startedDocument = true
		return Event{Kind: DocumentStart}, nil
	}
	if p.pendingSelfClose != nil {
		name := p.pendingSelfClose
		p.pendingSelfClose = nil
		return p.closeElement(name)
	}

	ev, err := p.nextInner()
	if err != nil {
		p.terminalErr = err
		return Event{}, err
	}
	if ev.Kind == DocumentEnd {
		p.complete = true
	}
	return ev, nil
}

// nextInner performs one unit of real parsing work: either markup
// dispatch (on seeing '<') or a text run, depth-sensitive on whether
// we're inside the root element.
func (p *Parser) nextInner() (Event, error) {
	for {
		b, err := p.src.PeekByte()
		if err == io.EOF {
			if len(p.stack) > 0 {
				return Event{}, newPosErr(UnexpectedEndOfInput, p.offset, "unexpected end of document inside element %q", string(p.stack[len(p.stack)-1].name))
			}
			return Event{Kind: DocumentEnd}, nil
		}
		if err != nil {
			return Event{}, wrap(err, "reading next byte")
		}

		if b != '<' {
			ev, ok, err := p.scanText()
			if err != nil {
				return Event{}, err
			}
			if ok {
				return ev, nil
			}
			// Suppressed empty/whitespace text: loop to find markup.
			continue
		}

		return p.readMarkup()
	}
}

// scanText consumes a character-data run up to (not including) the
// next '<', classifies it, and reports whether an event should be
// emitted (false means the run was empty or suppressed whitespace).
//
// A run that reaches true end of input without finding '<' is only
// valid outside any open element (trailing whitespace after the root,
// e.g. a final newline) — nextInner then reaches true EOF on its next
// PeekByte and reports DocumentEnd from there. Inside an open element, hitting
// EOF here still means the document is truncated.
func (p *Parser) scanText() (Event, bool, error) {
	raw, atEOF, err := p.scanTextRaw()
	if err != nil {
		return Event{}, false, err
	}
	if atEOF && len(p.stack) != 0 {
		return Event{}, false, newPosErr(UnexpectedEndOfInput, p.offset, "unexpected end of document inside element %q", string(p.stack[len(p.stack)-1].name))
	}
	if len(raw) == 0 {
		return Event{}, false, nil
	}

	allWS := isAllWhitespace(raw)
	if !allWS && len(p.stack) == 0 {
		return Event{}, false, newPosErr(InvalidMarkup, p.offset, "non-whitespace character data outside the root element")
	}
	if allWS && !p.cfg.preserveWhitespace {
		return Event{}, false, nil
	}

	data, err := p.materializeText(raw)
	if err != nil {
		return Event{}, false, err
	}
	if allWS {
		return Event{Kind: Whitespace, Data: data}, true, nil
	}
	return Event{Kind: Text, Data: data}, true, nil
}

// scanTextRaw is scanRaw's text-specific sibling: it consumes bytes up
// to (not including) the next '<', same as scanRaw would, but treats
// running out of input without ever seeing '<' as a clean stop
// (atEOF=true) rather than an unconditional error — scanText decides
// whether that's acceptable based on whether an element is still open.
func (p *Parser) scanTextRaw() (raw []byte, atEOF bool, err error) {
	chunk := 64
	for {
		b, err := p.src.Peek(chunk)
		if err != nil {
			return nil, false, wrap(err, "scanning text")
		}
		for i, c := range b {
			if c == '<' {
				raw, err := p.take(i)
				return raw, false, err
			}
		}
		if len(b) < chunk {
			raw, err := p.take(len(b))
			return raw, true, err
		}
		chunk *= 2
		if chunk > p.cfg.maxTokenSize {
			return nil, false, newPosErr(TokenTooLarge, p.offset, "token exceeds max size of %d bytes", p.cfg.maxTokenSize)
		}
	}
}

// materializeText durably stores raw (resolving entities if enabled
// and present), or returns it directly when the source already
// guarantees borrowed stability.
func (p *Parser) materializeText(raw []byte) ([]byte, error) {
	if p.cfg.resolveEntities && bytes.IndexByte(raw, '&') >= 0 {
		return p.arena.storeWithEntities(raw, p.entities)
	}
	if p.src.Borrowed() {
		return raw, nil
	}
	return p.arena.store(raw), nil
}

func isAllWhitespace(b []byte) bool {
	for _, c := range b {
		if !isXMLSpace(c) {
			return false
		}
	}
	return true
}

func isXMLSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// readMarkup is called with '<' as the next unconsumed byte. It
// dispatches to the correct markup alternative.
func (p *Parser) readMarkup() (Event, error) {
	if ok, _ := p.hasPrefix("<!--"); ok {
		return p.readComment()
	}
	if ok, _ := p.hasPrefix("<![CDATA["); ok {
		return p.readCDATA()
	}
	if ok, _ := p.hasPrefix("<!DOCTYPE"); ok {
		return p.readDoctype()
	}
	if ok, _ := p.hasPrefix("<?xml"); ok {
		if after, err := p.byteAt(5); err == nil && (isXMLSpace(after) || after == '?') {
			return p.readXMLDeclaration()
		}
	}
	if ok, _ := p.hasPrefix("<?"); ok {
		return p.readProcessingInstruction()
	}
	if ok, _ := p.hasPrefix("</"); ok {
		return p.readEndElement()
	}
	return p.readStartElement()
}

// hasPrefix reports whether the upcoming bytes equal s, without
// consuming anything.
func (p *Parser) hasPrefix(s string) (bool, error) {
	b, err := p.src.Peek(len(s))
	if err != nil {
		return false, err
	}
	return bytes.HasPrefix(b, []byte(s)), nil
}

// byteAt peeks the byte at offset n from the current position without
// consuming anything.
func (p *Parser) byteAt(n int) (byte, error) {
	b, err := p.src.Peek(n + 1)
	if err != nil {
		return 0, err
	}
	if len(b) <= n {
		return 0, io.EOF
	}
	return b[n], nil
}

// ---------------------------------------------------------------
// Start / end elements
// ---------------------------------------------------------------

func (p *Parser) readStartElement() (Event, error) {
	if len(p.stack) >= p.cfg.maxDepth {
		return Event{}, newPosErr(TooManyNestedElements, p.offset, "exceeded max nesting depth %d", p.cfg.maxDepth)
	}

	frameMark := p.arena.mark()
	if err := p.toss(1); err != nil { // consume '<'
		return Event{}, err
	}
	name, err := p.readName()
	if err != nil {
		return Event{}, err
	}

	attrStart := len(p.attrBuf)
	selfClose, err := p.readAttributes()
	if err != nil {
		return Event{}, err
	}
	attrs := p.attrBuf[attrStart:len(p.attrBuf):len(p.attrBuf)]

	frame := elementFrame{name: name, mark: frameMark, attrStart: attrStart}
	p.stack = append(p.stack, frame)

	ev := Event{Kind: StartElement, Name: name, Attrs: attrs}

	if selfClose {
		p.pendingSelfClose = name
	}
	return ev, nil
}

// closeElement performs the shared end-of-element bookkeeping for
// both an explicit </name> and a synthesized self-close: emit
// end_element, pop the frame, reset the arena to its mark, and
// truncate the attribute workspace.
func (p *Parser) closeElement(name []byte) (Event, error) {
	if len(p.stack) == 0 {
		return Event{}, newPosErr(UnmatchedClosingTag, p.offset, "closing tag %q has no matching open element", string(name))
	}
	frame := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	ev := Event{Kind: EndElement, Name: frame.name}

	p.attrBuf = p.attrBuf[:frame.attrStart]
	p.arena.resetToMark(frame.mark)

	return ev, nil
}

func (p *Parser) readEndElement() (Event, error) {
	if err := p.toss(2); err != nil { // consume "</"
		return Event{}, err
	}
	if len(p.stack) == 0 {
		return Event{}, newPosErr(UnmatchedClosingTag, p.offset, "closing tag with no matching open element")
	}
	top := p.stack[len(p.stack)-1]

	if err := p.expectLiteralName(top.name); err != nil {
		return Event{}, err
	}
	if err := p.skipWhitespace(); err != nil {
		return Event{}, err
	}
	if err := p.expectByte('>'); err != nil {
		return Event{}, newPosErr(ExpectedClosingBracket, p.offset, "expected '>' closing </%s>", string(top.name))
	}
	return p.closeElement(top.name)
}

// expectLiteralName verifies the upcoming bytes equal name exactly,
// character-for-character, without storing anything in the arena. It
// advances past the matched bytes on success.
func (p *Parser) expectLiteralName(name []byte) error {
	b, err := p.src.Peek(len(name) + 1)
	if err != nil {
		return wrap(err, "reading closing tag name")
	}
	if len(b) < len(name) || !bytes.Equal(b[:len(name)], name) {
		got := b
		return newPosErr(MismatchedTags, p.offset, "expected closing tag %q, got %q", string(name), string(got))
	}
	if len(b) > len(name) && isNameByte(b[len(name)]) {
		// Longer name than expected (e.g. </foobar> vs open <foo>).
		return newPosErr(MismatchedTags, p.offset, "expected closing tag %q, got a longer name", string(name))
	}
	return p.toss(len(name))
}

// ---------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------

// attributeCapWarnMargin is how close to cfg.maxAttributes a start tag
// must get before readAttributes logs a near-miss at Debug level.
const attributeCapWarnMargin = 8

// readAttributes parses zero or more attributes into p.attrBuf and
// reports whether the element is self-closing. On return, the
// element's opening '<name' has been fully consumed through the
// trailing '>' (or "/>" ).
func (p *Parser) readAttributes() (selfClose bool, err error) {
	count := 0
	for {
		if err := p.skipWhitespace(); err != nil {
			return false, err
		}
		b, err := p.src.PeekByte()
		if err != nil {
			return false, newPosErr(UnexpectedEndOfInput, p.offset, "unexpected end of input in start tag")
		}
		if b == '>' {
			return false, p.toss(1)
		}
		if b == '/' {
			if ok, _ := p.hasPrefix("/>"); !ok {
				return false, newPosErr(InvalidMarkup, p.offset, "expected '/>' for self-closing element")
			}
			p.toss(2)
			return true, nil
		}

		if count >= p.cfg.maxAttributes {
			return false, newPosErr(TooManyAttributes, p.offset, "element exceeds max attribute count %d", p.cfg.maxAttributes)
		}
		if p.cfg.maxAttributes-count <= attributeCapWarnMargin {
			p.logger.Debug("approaching max attribute count", "count", count, "max", p.cfg.maxAttributes)
		}

		name, err := p.readName()
		if err != nil {
			return false, err
		}
		if err := p.skipWhitespace(); err != nil {
			return false, err
		}
		if err := p.expectByte('='); err != nil {
			return false, newPosErr(ExpectedEquals, p.offset, "expected '=' after attribute name %q", string(name))
		}
		if err := p.skipWhitespace(); err != nil {
			return false, err
		}
		quote, err := p.src.PeekByte()
		if err != nil || (quote != '"' && quote != '\'') {
			return false, newPosErr(ExpectedQuote, p.offset, "expected quote starting value of attribute %q", string(name))
		}
		p.toss(1)
		value, err := p.readAttrValue(quote)
		if err != nil {
			return false, err
		}

		p.attrBuf = append(p.attrBuf, Attr{Name: name, Value: value})
		count++
	}
}

func (p *Parser) readAttrValue(quote byte) ([]byte, error) {
	raw, err := p.scanRaw(func(c byte) bool { return c == quote }, UnterminatedAttributeValue)
	if err != nil {
		return nil, err
	}
	if err := p.toss(1); err != nil { // consume closing quote
		return nil, err
	}
	if p.cfg.resolveEntities && bytes.IndexByte(raw, '&') >= 0 {
		return p.arena.storeWithEntities(raw, p.entities)
	}
	if p.src.Borrowed() {
		return raw, nil
	}
	return p.arena.store(raw), nil
}

// ---------------------------------------------------------------
// Comments, CDATA, processing instructions
// ---------------------------------------------------------------

func (p *Parser) readComment() (Event, error) {
	p.toss(4) // "<!--"
	raw, err := p.scanUntilDelim([]byte("-->"), UnterminatedComment)
	if err != nil {
		return Event{}, err
	}
	data, err := p.durable(raw)
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: Comment, Data: data}, nil
}

func (p *Parser) readCDATA() (Event, error) {
	p.toss(9) // "<![CDATA["
	raw, err := p.scanUntilDelim([]byte("]]>"), UnterminatedCDATA)
	if err != nil {
		return Event{}, err
	}
	data, err := p.durable(raw)
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: CData, Data: data}, nil
}

func (p *Parser) readProcessingInstruction() (Event, error) {
	p.toss(2) // "<?"
	target, err := p.readName()
	if err != nil {
		return Event{}, err
	}
	p.skipWhitespace()
	raw, err := p.scanUntilDelim([]byte("?>"), UnterminatedProcessingInstruction)
	if err != nil {
		return Event{}, err
	}
	data, err := p.durable(bytes.TrimSpace(raw))
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: ProcessingInstruction, Target: target, Data: data}, nil
}

// durable copies raw into the arena unless the source already
// guarantees stability.
func (p *Parser) durable(raw []byte) ([]byte, error) {
	if p.src.Borrowed() {
		return raw, nil
	}
	return p.arena.store(raw), nil
}

// ---------------------------------------------------------------
// XML declaration
// ---------------------------------------------------------------

func (p *Parser) readXMLDeclaration() (Event, error) {
	p.toss(5) // "<?xml"
	raw, err := p.scanUntilDelim([]byte("?>"), InvalidXMLDeclaration)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Kind: XMLDeclaration}
	attrs, err := parsePseudoAttributes(raw)
	if err != nil {
		return Event{}, newErr(InvalidXMLDeclaration, "%s", err.Error())
	}
	version, ok := attrs["version"]
	if !ok {
		return Event{}, newErr(InvalidXMLDeclaration, "missing required version pseudo-attribute")
	}
	ev.Version = version
	if enc, ok := attrs["encoding"]; ok {
		ev.Encoding = enc
		ev.HasEncoding = true
	}
	if sa, ok := attrs["standalone"]; ok {
		ev.Standalone = sa == "yes"
		ev.HasStandalone = true
	}
	return ev, nil
}

// parsePseudoAttributes parses the name="value" pairs inside an XML
// or text declaration's pseudo-attribute list.
func parsePseudoAttributes(raw []byte) (map[string]string, error) {
	out := make(map[string]string)
	i := 0
	for i < len(raw) {
		for i < len(raw) && isXMLSpace(raw[i]) {
			i++
		}
		if i >= len(raw) {
			break
		}
		start := i
		for i < len(raw) && isNameByte(raw[i]) {
			i++
		}
		if i == start {
			return nil, newErr(InvalidXMLDeclaration, "expected pseudo-attribute name")
		}
		key := string(raw[start:i])
		for i < len(raw) && isXMLSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			return nil, newErr(InvalidXMLDeclaration, "expected '=' after %q", key)
		}
		i++
		for i < len(raw) && isXMLSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || (raw[i] != '"' && raw[i] != '\'') {
			return nil, newErr(InvalidXMLDeclaration, "expected quoted value for %q", key)
		}
		quote := raw[i]
		i++
		vstart := i
		for i < len(raw) && raw[i] != quote {
			i++
		}
		if i >= len(raw) {
			return nil, newErr(InvalidXMLDeclaration, "unterminated value for %q", key)
		}
		out[key] = string(raw[vstart:i])
		i++
	}
	return out, nil
}

// ---------------------------------------------------------------
// DOCTYPE
// ---------------------------------------------------------------

func (p *Parser) readDoctype() (Event, error) {
	p.toss(9) // "<!DOCTYPE"
	if err := p.skipRequiredWhitespace(InvalidDoctype); err != nil {
		return Event{}, err
	}
	name, err := p.readName()
	if err != nil {
		return Event{}, err
	}
	ev := Event{Kind: Doctype, RootName: string(name)}

	if err := p.skipWhitespace(); err != nil {
		return Event{}, err
	}
	if ok, _ := p.hasPrefix("SYSTEM"); ok {
		p.toss(6)
		if err := p.skipRequiredWhitespace(InvalidDoctype); err != nil {
			return Event{}, err
		}
		sysID, err := p.readQuotedLiteral()
		if err != nil {
			return Event{}, err
		}
		ev.SystemID = sysID
		ev.HasSystemID = true
	} else if ok, _ := p.hasPrefix("PUBLIC"); ok {
		p.toss(6)
		if err := p.skipRequiredWhitespace(InvalidDoctype); err != nil {
			return Event{}, err
		}
		pubID, err := p.readQuotedLiteral()
		if err != nil {
			return Event{}, err
		}
		ev.PublicID = pubID
		ev.HasPublicID = true
		if err := p.skipRequiredWhitespace(InvalidDoctype); err != nil {
			return Event{}, err
		}
		sysID, err := p.readQuotedLiteral()
		if err != nil {
			return Event{}, err
		}
		ev.SystemID = sysID
		ev.HasSystemID = true
	}

	if err := p.skipWhitespace(); err != nil {
		return Event{}, err
	}
	if b, _ := p.src.PeekByte(); b == '[' {
		p.toss(1)
		if err := p.parseInternalSubset(); err != nil {
			return Event{}, err
		}
		if err := p.skipWhitespace(); err != nil {
			return Event{}, err
		}
	}

	if err := p.expectByte('>'); err != nil {
		return Event{}, newPosErr(InvalidDoctype, p.offset, "expected '>' closing DOCTYPE declaration")
	}
	return ev, nil
}

func (p *Parser) readQuotedLiteral() (string, error) {
	quote, err := p.src.PeekByte()
	if err != nil || (quote != '"' && quote != '\'') {
		return "", newPosErr(ExpectedQuote, p.offset, "expected quoted literal in DOCTYPE")
	}
	p.toss(1)
	raw, err := p.scanRaw(func(c byte) bool { return c == quote }, UnterminatedDoctype)
	if err != nil {
		return "", err
	}
	p.toss(1)
	return string(raw), nil
}

// parseInternalSubset scans the DOCTYPE internal subset enclosed in
// '[' ']', tracking bracket depth, recording ENTITY declarations and
// skipping everything else. Parameter entities ("%name;") are a
// documented non-goal and are skipped without recording.
func (p *Parser) parseInternalSubset() error {
	depth := 1
	for {
		b, err := p.src.PeekByte()
		if err != nil {
			return newPosErr(UnterminatedDoctype, p.offset, "unterminated internal subset")
		}
		if ok, _ := p.hasPrefix("<!ENTITY"); ok {
			if err := p.parseEntityDecl(); err != nil {
				return err
			}
			continue
		}
		switch b {
		case '[':
			depth++
			p.toss(1)
		case ']':
			depth--
			p.toss(1)
			if depth == 0 {
				return nil
			}
		default:
			p.toss(1)
		}
	}
}

func (p *Parser) parseEntityDecl() error {
	p.toss(8) // "<!ENTITY"
	p.skipWhitespace()

	if b, _ := p.src.PeekByte(); b == '%' {
		// Parameter entity: recognized but not resolved.
		return p.skipToByte('>', UnterminatedDoctype)
	}

	name, err := p.readName()
	if err != nil {
		return err
	}
	p.skipWhitespace()

	b, err := p.src.PeekByte()
	if err != nil {
		return newPosErr(UnterminatedDoctype, p.offset, "unterminated ENTITY declaration")
	}
	if b != '"' && b != '\'' {
		// NDATA / external entity forms: skip, not resolvable per spec.
		return p.skipToByte('>', UnterminatedDoctype)
	}
	value, err := p.readQuotedLiteral()
	if err != nil {
		return err
	}
	p.entities.declare(string(name), value)
	return p.skipToByte('>', UnterminatedDoctype)
}

func (p *Parser) skipToByte(target byte, onUnterminated ErrorKind) error {
	for {
		b, err := p.src.PeekByte()
		if err != nil {
			return newPosErr(onUnterminated, p.offset, "expected %q before end of input", target)
		}
		p.toss(1)
		if b == target {
			return nil
		}
	}
}

// ---------------------------------------------------------------
// Low-level scanning helpers
// ---------------------------------------------------------------

// scanRaw consumes and returns bytes up to (not including) the first
// byte for which isStop returns true. The returned slice is durable
// only if p.src.Borrowed(); callers that need durability must copy it
// into the arena themselves — a stream-backed Source's returned slices
// stay valid only until the next call.
func (p *Parser) scanRaw(isStop func(byte) bool, onUnterminated ErrorKind) ([]byte, error) {
	chunk := 64
	for {
		b, err := p.src.Peek(chunk)
		if err != nil {
			return nil, wrap(err, "scanning token")
		}
		for i, c := range b {
			if isStop(c) {
				return p.take(i)
			}
		}
		if len(b) < chunk {
			return nil, newPosErr(onUnterminated, p.offset, "unexpected end of input while scanning token")
		}
		chunk *= 2
		if chunk > p.cfg.maxTokenSize {
			return nil, newPosErr(TokenTooLarge, p.offset, "token exceeds max size of %d bytes", p.cfg.maxTokenSize)
		}
	}
}

// scanUntilDelim behaves like scanRaw but stops at (and consumes) a
// multi-byte delimiter, returning only the content before it.
func (p *Parser) scanUntilDelim(delim []byte, onUnterminated ErrorKind) ([]byte, error) {
	chunk := 64
	for {
		b, err := p.src.Peek(chunk)
		if err != nil {
			return nil, wrap(err, "scanning delimited token")
		}
		if idx := bytes.Index(b, delim); idx >= 0 {
			content, err := p.take(idx)
			if err != nil {
				return nil, err
			}
			if err := p.toss(len(delim)); err != nil {
				return nil, err
			}
			return content, nil
		}
		if len(b) < chunk {
			return nil, newPosErr(onUnterminated, p.offset, "unterminated token, expected %q", string(delim))
		}
		chunk *= 2
		if chunk > p.cfg.maxTokenSize {
			return nil, newPosErr(TokenTooLarge, p.offset, "token exceeds max size of %d bytes", p.cfg.maxTokenSize)
		}
	}
}

func (p *Parser) skipWhitespace() error {
	_, err := p.scanRaw(func(c byte) bool { return !isXMLSpace(c) }, UnexpectedEndOfInput)
	return err
}

func (p *Parser) skipRequiredWhitespace(onMissing ErrorKind) error {
	b, err := p.src.PeekByte()
	if err != nil || !isXMLSpace(b) {
		return newPosErr(onMissing, p.offset, "expected whitespace")
	}
	return p.skipWhitespace()
}

func (p *Parser) expectByte(want byte) error {
	b, err := p.src.PeekByte()
	if err != nil || b != want {
		return newPosErr(InvalidMarkup, p.offset, "expected %q", want)
	}
	return p.toss(1)
}

// readName reads an element or attribute name: an ASCII fast path for
// [A-Za-z_][A-Za-z0-9._:-]*, falling back to a permissive delimiter
// scan for any name beginning with a byte ≥ 0x80.
func (p *Parser) readName() ([]byte, error) {
	first, err := p.src.PeekByte()
	if err != nil {
		return nil, newPosErr(InvalidElementName, p.offset, "expected name, got end of input")
	}
	if first >= 0x80 {
		raw, err := p.scanRaw(isNameDelimiter, InvalidElementName)
		if err != nil {
			return nil, err
		}
		return p.durable(raw)
	}
	if !isNameStartByte(first) {
		return nil, newPosErr(InvalidElementName, p.offset, "invalid name start byte %q", first)
	}
	raw, err := p.scanRaw(func(c byte) bool { return !isNameByte(c) }, InvalidElementName)
	if err != nil {
		return nil, err
	}
	return p.durable(raw)
}

func isNameDelimiter(c byte) bool {
	return isXMLSpace(c) || c == '>' || c == '/' || c == '=' || c == '<'
}

func isNameStartByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

func isNameByte(c byte) bool {
	return isNameStartByte(c) || (c >= '0' && c <= '9') || c == '.' || c == ':' || c == '-'
}
