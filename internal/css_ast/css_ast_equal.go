package css_ast

// Structural value equality over nodes, used by the shorthand collapser and
// the @media merger. Replacement pointers are followed on both sides so a
// rewritten node compares as what it will print as.

func NodesEqual(a N, b N) bool {
	a = Resolve(a)
	b = Resolve(b)
	if a == nil || b == nil {
		return a == b
	}

	switch an := a.(type) {
	case *Identifier:
		if bn, ok := b.(*Identifier); ok {
			return *an.Name == *bn.Name
		}

	case *CustomProperty:
		if bn, ok := b.(*CustomProperty); ok {
			return *an.Name == *bn.Name
		}

	case *Percentage:
		if bn, ok := b.(*Percentage); ok {
			return numbersEqual(&an.Number, &bn.Number)
		}

	case *Dimension:
		if bn, ok := b.(*Dimension); ok {
			return an.Unit == bn.Unit && numbersEqual(&an.Number, &bn.Number)
		}

	case *Number:
		if bn, ok := b.(*Number); ok {
			return numbersEqual(an, bn)
		}

	case *Color:
		if bn, ok := b.(*Color); ok {
			return an.Kind == bn.Kind && an.Value == bn.Value
		}

	case *String:
		if bn, ok := b.(*String); ok {
			return an.Value == bn.Value
		}

	case *Delimiter:
		if bn, ok := b.(*Delimiter); ok {
			return an.Value == bn.Value
		}

	case *UnicodeRange:
		if bn, ok := b.(*UnicodeRange); ok {
			return an.Value == bn.Value
		}

	case *Function:
		if bn, ok := b.(*Function); ok {
			return an.Name == bn.Name && nodeListsEqual(an.Parameters, bn.Parameters)
		}

	case *Block:
		if bn, ok := b.(*Block); ok {
			return an.Kind == bn.Kind && nodeListEqual(an.Elements, bn.Elements)
		}

	case *Declaration:
		if bn, ok := b.(*Declaration); ok {
			return an.Important == bn.Important &&
				an.ImportantHack == bn.ImportantHack &&
				NodesEqual(an.Name, bn.Name) &&
				nodeListsEqual(an.Values, bn.Values)
		}
	}

	return false
}

func numbersEqual(a *Number, b *Number) bool {
	return a.Value == b.Value && a.Negative == b.Negative && a.Scientific == b.Scientific
}

func nodeListEqual(a []N, b []N) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !NodesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func nodeListsEqual(a [][]N, b [][]N) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !nodeListEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
