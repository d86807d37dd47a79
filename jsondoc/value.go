package jsondoc

// Value is a read-only view of a node in a Document.
// The zero Value stands for a missing member and reads as null.
type Value struct {
	node *node
}

// Exists reports whether the value was present in the document
func (v Value) Exists() bool {
	return v.node != nil
}

func (v Value) Kind() Kind {
	if v.node == nil {
		return KindNull
	}
	return v.node.kind
}

// Get returns the first member named key, or a missing value when v is not an object
func (v Value) Get(key string) Value {
	if v.Kind() != KindObject {
		return Value{}
	}
	for i, k := range v.node.keys {
		if k == key {
			return Value{node: v.node.items[i]}
		}
	}
	return Value{}
}

// At returns the element at index, or a missing value when v is not an array or index is out of range
func (v Value) At(index int) Value {
	if v.Kind() != KindArray || index < 0 || index >= len(v.node.items) {
		return Value{}
	}
	return Value{node: v.node.items[index]}
}

// Len returns the number of elements or members, zero for scalars
func (v Value) Len() int {
	if v.node == nil {
		return 0
	}
	return len(v.node.items)
}

// Text returns the string content, or "" when v is not a string
func (v Value) Text() string {
	if v.Kind() != KindString {
		return ""
	}
	return v.node.text
}

// number returns the literal of a number value, or "" when v is not a number
func (v Value) number() string {
	if v.Kind() != KindNumber {
		return ""
	}
	return v.node.text
}

func (v Value) boolean() bool {
	return v.Kind() == KindBool && v.node.flag
}
