package ir

// OpTrait describes structural properties of an operation.
type OpTrait uint8

const (
	// TraitTerminator marks operations that must end a block.
	TraitTerminator OpTrait = 1 << iota
	// TraitReturnLike marks terminators whose operands are the function results.
	TraitReturnLike
)

// OpDef describes one registered operation.
type OpDef struct {
	Name   string // Unqualified, e.g. "return"
	Traits OpTrait
}

// Has reports whether the operation has every trait in t.
func (d OpDef) Has(t OpTrait) bool {
	return d.Traits&t == t
}

// Dialect is a named set of operations.
type Dialect struct {
	Name       string
	Operations []OpDef

	// AllowUnknownOperations accepts operations missing from Operations.
	// They are created without traits.
	AllowUnknownOperations bool
}

// Lookup finds an operation by its unqualified name.
func (d *Dialect) Lookup(op string) (OpDef, bool) {
	for _, def := range d.Operations {
		if def.Name == op {
			return def, true
		}
	}
	return OpDef{}, false
}
