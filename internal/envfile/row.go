package envfile

type RowKind int

const (
	RowEmpty RowKind = iota
	RowComment
	RowDeclaration
)

func (k RowKind) String() string {
	switch k {
	case RowComment:
		return "comment"
	case RowDeclaration:
		return "declaration"
	default:
		return "empty"
	}
}

// Row is one line of a File. Declaration is set only for RowDeclaration and
// Comment only for RowComment.
type Row struct {
	Kind        RowKind
	Num         int
	Declaration Declaration
	Comment     string

	raw string
}

func DeclarationRow(d Declaration) Row {
	return Row{Kind: RowDeclaration, Declaration: d}
}

func (r Row) String() string {
	if r.Kind == RowDeclaration {
		return r.Declaration.String()
	}
	return r.raw
}
