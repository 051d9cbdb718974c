package notify

// Directory is the injected routing table mapping department tags to chat
// recipients. It replaces what used to be process-wide mutable lists, so the
// coordinator stays constructible in tests.
type Directory struct {
	Head    []string
	Finance []string
	Payers  []string
}

func (d Directory) Resolve(tag string) []string {
	switch tag {
	case "head":
		return d.Head
	case "finance":
		return d.Finance
	case "payers":
		return d.Payers
	case "all":
		out := make([]string, 0, len(d.Head)+len(d.Finance)+len(d.Payers))
		out = append(out, d.Head...)
		out = append(out, d.Finance...)
		out = append(out, d.Payers...)
		return out
	}
	return nil
}
