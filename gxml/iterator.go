package gxml

import "reflect"

// iteratorBinder is implemented by every instantiation of Iterator[T],
// regardless of T. A schema field's address implements this exactly
// when its declared type is Iterator[T] for some T, which is how the
// dispatcher recognizes a lazy-iterator field using a plain interface
// assertion instead of reflecting on type parameters directly.
type iteratorBinder interface {
	bindIterator(p *Parser, parentName []byte, tag string)
}

// multiIteratorBinder is the MultiIterator[V] analogue of iteratorBinder.
type multiIteratorBinder interface {
	bindMultiIterator(p *Parser, parentName []byte)
}

// childScope is implemented by Iterator and MultiIterator so a
// container iterator can ask a lazy child it just handed out whether
// the child's own scope is still open. A child that was fully drained
// by the caller (its own Next reached the enclosing EndElement and
// consumed it) has already advanced the shared parser past its own
// close; the container must not skip a subtree in that case, since
// there is nothing left of the child's scope to skip.
type childScope interface {
	stillOpen() bool
}

// Iterator is the lazy-decode handle: a record field of this type owns
// the parser's event stream for the span of its enclosing element,
// yielding one *T per matching child element instead of materializing
// them all up front.
//
// Next returns (nil, nil) once the enclosing element's children are
// exhausted. A zero-value Iterator (never bound because its record was
// never reached, e.g. an optional parent wasn't present) behaves the
// same way.
type Iterator[T any] struct {
	p          *Parser
	parentName []byte
	tag        string
	done       bool
	openChild  childScope
}

func (it *Iterator[T]) bindIterator(p *Parser, parentName []byte, tag string) {
	it.p = p
	it.parentName = parentName
	it.tag = tag
	it.done = false
	it.openChild = nil
}

func (it *Iterator[T]) stillOpen() bool { return !it.done }

// Next decodes and returns the next child element named after this
// iterator's field, skipping any sibling elements with other names. If
// the previously returned item was itself a lazy record, Next first
// checks whether that record's own iterator is still open: if the
// caller fully drained it, its own Next already consumed our shared
// parent's EndElement and there is nothing left to skip; otherwise
// Next fast-forwards past its still-open scope — this is what keeps a
// partially or never-drained nested iterator from corrupting the
// shared parser position.
func (it *Iterator[T]) Next() (*T, error) {
	if it.p == nil || it.done {
		return nil, nil
	}
	if it.openChild != nil {
		if it.openChild.stillOpen() {
			it.p.logger.Debug("closing still-open nested iterator scope before advancing", "tag", it.tag)
			if err := skipSubtree(it.p); err != nil {
				return nil, err
			}
		}
		it.openChild = nil
	}
	for {
		ev, err := it.p.Next()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case EndElement:
			it.done = true
			return nil, nil
		case StartElement:
			if string(ev.Name) != it.tag {
				it.p.logger.Warn("skipping unrecognized sibling element", "expected", it.tag, "got", string(ev.Name))
				if err := skipSubtree(it.p); err != nil {
					return nil, err
				}
				continue
			}
			var item T
			scope, err := decodeRecord(it.p, reflect.ValueOf(&item).Elem(), ev)
			if err != nil {
				return nil, err
			}
			it.openChild = scope
			return &item, nil
		default:
			// Comments, PIs, and (non-preserved) text between
			// children carry no record data.
		}
	}
}

// MultiIterator is the variant-dispatch analogue of Iterator: each
// child may be any of several concrete types registered against the
// interface V via RegisterVariant, selected by the child's element
// name.
type MultiIterator[V any] struct {
	p          *Parser
	parentName []byte
	done       bool
	openChild  childScope
}

func (m *MultiIterator[V]) bindMultiIterator(p *Parser, parentName []byte) {
	m.p = p
	m.parentName = parentName
	m.done = false
	m.openChild = nil
}

func (m *MultiIterator[V]) stillOpen() bool { return !m.done }

// Next decodes and returns the next child element whose name matches a
// variant registered for V, skipping unrecognized siblings. It returns
// (zero, false, nil) once the enclosing element's children are
// exhausted. As with Iterator.Next, a previously returned lazy variant
// that the caller fully drained has already closed its own scope, so
// Next only skips when that variant's iterator is still open.
func (m *MultiIterator[V]) Next() (V, bool, error) {
	var zero V
	if m.p == nil || m.done {
		return zero, false, nil
	}
	if m.openChild != nil {
		if m.openChild.stillOpen() {
			m.p.logger.Debug("closing still-open nested iterator scope before advancing", "parent", string(m.parentName))
			if err := skipSubtree(m.p); err != nil {
				return zero, false, err
			}
		}
		m.openChild = nil
	}
	ifaceType := reflect.TypeOf((*V)(nil)).Elem()
	for {
		ev, err := m.p.Next()
		if err != nil {
			return zero, false, err
		}
		switch ev.Kind {
		case EndElement:
			m.done = true
			return zero, false, nil
		case StartElement:
			concreteType, ok := lookupVariant(ifaceType, string(ev.Name))
			if !ok {
				m.p.logger.Warn("skipping element with no registered variant", "got", string(ev.Name))
				if err := skipSubtree(m.p); err != nil {
					return zero, false, err
				}
				continue
			}
			ptr := reflect.New(concreteType)
			scope, err := decodeRecord(m.p, ptr.Elem(), ev)
			if err != nil {
				return zero, false, err
			}
			val, ok := ptr.Elem().Interface().(V)
			if !ok {
				return zero, false, newErr(UnexpectedElement, "variant %s does not implement the iterator's interface", concreteType)
			}
			m.openChild = scope
			return val, true, nil
		default:
		}
	}
}

// skipSubtree consumes events until the close of the element whose
// start_element has already been read (depth starts at 1), without
// interpreting any schema over its content. It is the generic
// mechanism behind both "skip an unrecognized sibling" and "abandon an
// undrained nested iterator's scope" — both only need the parser's own
// start/end balance, never the content in between.
func skipSubtree(p *Parser) error {
	depth := 1
	for depth > 0 {
		ev, err := p.Next()
		if err != nil {
			return err
		}
		switch ev.Kind {
		case StartElement:
			depth++
		case EndElement:
			depth--
		}
	}
	return nil
}
