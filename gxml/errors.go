package gxml

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind identifies the specific contract violated by a failing
// operation. Every terminal error produced by this package carries one.
type ErrorKind int

const (
	// Source shape errors.
	UnexpectedEndOfInput ErrorKind = iota
	UnterminatedToken
	TokenTooLarge

	// Markup structure errors.
	InvalidMarkup
	ExpectedClosingBracket
	ExpectedEquals
	ExpectedQuote
	UnterminatedAttributeValue
	UnterminatedComment
	UnterminatedCDATA
	UnterminatedProcessingInstruction
	UnterminatedDoctype
	InvalidXMLDeclaration
	InvalidDoctype
	InvalidElementName

	// Structural errors.
	MismatchedTags
	UnmatchedClosingTag
	TooManyNestedElements
	TooManyAttributes
	EmptyText

	// Schema-binding errors.
	MissingRequiredField
	UnexpectedElement
	LazyStructCanOnlyHavePrimitiveAttributes
	NoRootElement
	UnexpectedEndOfDocument

	// Conversion errors.
	InvalidInteger
	InvalidFloat
	InvalidBoolean

	// Schema-definition errors (raised by ValidateSchema, never mid-parse).
	MultipleIteratorFields
	LazyDescendantUnderEagerRecord
	UnknownNameOverrideTarget
	InvalidRootSchema
)

var kindNames = map[ErrorKind]string{
	UnexpectedEndOfInput:                     "UnexpectedEndOfInput",
	UnterminatedToken:                         "UnterminatedToken",
	TokenTooLarge:                             "TokenTooLarge",
	InvalidMarkup:                             "InvalidMarkup",
	ExpectedClosingBracket:                    "ExpectedClosingBracket",
	ExpectedEquals:                            "ExpectedEquals",
	ExpectedQuote:                             "ExpectedQuote",
	UnterminatedAttributeValue:                "UnterminatedAttributeValue",
	UnterminatedComment:                       "UnterminatedComment",
	UnterminatedCDATA:                         "UnterminatedCDATA",
	UnterminatedProcessingInstruction:         "UnterminatedProcessingInstruction",
	UnterminatedDoctype:                       "UnterminatedDoctype",
	InvalidXMLDeclaration:                     "InvalidXmlDeclaration",
	InvalidDoctype:                            "InvalidDoctype",
	InvalidElementName:                        "InvalidElementName",
	MismatchedTags:                            "MismatchedTags",
	UnmatchedClosingTag:                       "UnmatchedClosingTag",
	TooManyNestedElements:                     "TooManyNestedElements",
	TooManyAttributes:                         "TooManyAttributes",
	EmptyText:                                 "EmptyText",
	MissingRequiredField:                      "MissingRequiredField",
	UnexpectedElement:                         "UnexpectedElement",
	LazyStructCanOnlyHavePrimitiveAttributes:  "LazyStructCanOnlyHavePrimitiveAttributes",
	NoRootElement:                             "NoRootElement",
	UnexpectedEndOfDocument:                   "UnexpectedEndOfDocument",
	InvalidInteger:                            "InvalidInteger",
	InvalidFloat:                              "InvalidFloat",
	InvalidBoolean:                            "InvalidBoolean",
	MultipleIteratorFields:                    "MultipleIteratorFields",
	LazyDescendantUnderEagerRecord:            "LazyDescendantUnderEagerRecord",
	UnknownNameOverrideTarget:                 "UnknownNameOverrideTarget",
	InvalidRootSchema:                         "InvalidRootSchema",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single error type surfaced across the parser and the
// schema dispatcher. It exposes its Kind publicly so callers can
// switch on failure type with Kind(err) rather than string matching.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Offset int // byte offset into the source, -1 if not applicable
	Line   int // 1-based line number, 0 if not tracked
	Err    error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("gxml: %s at line %d: %s", e.Kind, e.Line, e.Msg)
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("gxml: %s at offset %d: %s", e.Kind, e.Offset, e.Msg)
	}
	return fmt.Sprintf("gxml: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// newErr builds a terminal *Error with no source-position context.
func newErr(kind ErrorKind, msg string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(msg, args...), Offset: -1}
}

// newPosErr builds a terminal *Error anchored to a byte offset.
func newPosErr(kind ErrorKind, offset int, msg string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(msg, args...), Offset: offset}
}

// wrap annotates err with additional context using github.com/pkg/errors,
// preserving the original *Error (and its Kind) for errors.As/Kind(err).
func wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, context)
}

// Kind extracts the ErrorKind from err, walking the Unwrap chain. The
// second return is false if err (or nothing in its chain) is a *Error.
func Kind(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
