package model

// Comparison is the outcome of comparing an ancestor metadata document with a current one
type Comparison int

// Comparison outcomes
const (
	// NoMetadata means that neither document carries any metadata
	NoMetadata Comparison = iota
	// Equal means that both documents describe the same structure
	Equal
	// Subset means that the current document extends the ancestor
	Subset
	// NotEqualAndNotSubset means that the current document dropped or changed something
	NotEqualAndNotSubset
)

func (c Comparison) String() string {
	switch c {
	case NoMetadata:
		return "no metadata"
	case Equal:
		return "equal"
	case Subset:
		return "subset"
	case NotEqualAndNotSubset:
		return "not equal and not subset"
	default:
		return "unknown"
	}
}

// IsSubsetCompatible is true for Equal and Subset
func (c Comparison) IsSubsetCompatible() bool {
	return c == Equal || c == Subset
}

// ExtendsSpan is true whenever the current revision may join the pending span of its ancestor
func (c Comparison) ExtendsSpan() bool {
	return c != NotEqualAndNotSubset
}
