package gxml

import (
	"log/slog"
	"strconv"
	"unicode/utf8"
)

// entityTable maps DTD-declared entity names to their replacement
// text. Built-in entities and numeric character references are
// always resolvable and never stored in the table itself.
type entityTable struct {
	declared map[string]string
	logger   *slog.Logger
}

func newEntityTable() *entityTable {
	return &entityTable{declared: make(map[string]string)}
}

func (t *entityTable) declare(name, value string) {
	t.declared[name] = value
	if t.logger != nil {
		t.logger.Debug("declared DTD entity", "name", name)
	}
}

// logUnknown records that name had no declared, built-in, or numeric
// resolution and is being passed through literally. It is a no-op
// when no logger is attached.
func (t *entityTable) logUnknown(name []byte) {
	if t == nil || t.logger == nil {
		return
	}
	t.logger.Warn("unresolved entity reference, passing through literally", "entity", string(name))
}

var builtinEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"quot": `"`,
	"apos": "'",
}

// resolve applies the entity resolution order: DTD-declared entity,
// then built-ins, then numeric character references, then literal
// passthrough of the unresolved form.
func (t *entityTable) resolve(name []byte) (string, bool) {
	s := string(name)

	if t != nil {
		if v, ok := t.declared[s]; ok {
			return v, true
		}
	}
	if v, ok := builtinEntities[s]; ok {
		return v, true
	}
	if len(s) > 0 && s[0] == '#' {
		return resolveNumericRef(s[1:])
	}
	return "", false
}

// resolveNumericRef decodes "NNNN" (decimal) or "xHHHH"/"XHHHH" (hex)
// into its UTF-8 encoding. Invalid references fail to resolve, letting
// the caller preserve the literal form.
func resolveNumericRef(digits string) (string, bool) {
	if digits == "" {
		return "", false
	}
	var (
		cp  int64
		err error
	)
	if digits[0] == 'x' || digits[0] == 'X' {
		cp, err = strconv.ParseInt(digits[1:], 16, 32)
	} else {
		cp, err = strconv.ParseInt(digits, 10, 32)
	}
	if err != nil || cp < 0 || cp > utf8.MaxRune || !utf8.ValidRune(rune(cp)) {
		return "", false
	}
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, rune(cp))
	return string(buf[:n]), true
}
