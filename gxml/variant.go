package gxml

import (
	"reflect"
	"sync"
)

// Variant is the sealed marker every concrete alternative of a
// MultiIterator[V] must implement, by embedding VariantBase. It
// carries no behavior; its only purpose is to make V's method set
// impossible to satisfy by accident.
type Variant interface {
	gxmlVariant()
}

// VariantBase gives a struct the Variant marker method. Embed it in
// every concrete type passed to RegisterVariant.
type VariantBase struct{}

func (VariantBase) gxmlVariant() {}

// variantRegistry maps an interface type V to a name->concrete-type
// table, populated by RegisterVariant and consulted by
// MultiIterator[V].Next. Keyed per-interface because the same element
// name may mean different things under two different MultiIterator
// instantiations.
var variantRegistry sync.Map // map[reflect.Type]*sync.Map (string -> reflect.Type)

// RegisterVariant records that xmlName selects concrete type C when
// decoding a MultiIterator[V] child. Call it once (e.g. from an init
// func) per (V, C) pair before constructing any Decoder that uses it.
func RegisterVariant[V any, C any](xmlName string) {
	ifaceType := reflect.TypeOf((*V)(nil)).Elem()
	concreteType := reflect.TypeOf((*C)(nil)).Elem()
	actual, _ := variantRegistry.LoadOrStore(ifaceType, &sync.Map{})
	actual.(*sync.Map).Store(xmlName, concreteType)
}

func lookupVariant(ifaceType reflect.Type, xmlName string) (reflect.Type, bool) {
	v, ok := variantRegistry.Load(ifaceType)
	if !ok {
		return nil, false
	}
	t, ok := v.(*sync.Map).Load(xmlName)
	if !ok {
		return nil, false
	}
	return t.(reflect.Type), true
}
