package outline

// Rule is the structural role chosen for a visited node.
type Rule int

const (
	RuleRoot Rule = iota
	RuleCustom
	RuleCategoryIndex
	RuleContent
	RuleLevel
	RuleEmpty
)

func (r Rule) String() string {
	switch r {
	case RuleRoot:
		return "root"
	case RuleCustom:
		return "custom"
	case RuleCategoryIndex:
		return "category_index"
	case RuleContent:
		return "content"
	case RuleLevel:
		return "level"
	default:
		return "empty"
	}
}

// Facts are the only inputs classification looks at.
type Facts struct {
	IsRoot           bool
	IsTopLevelCustom bool
	HasContent       bool
	ChildCount       int
	LinkCount        int
}

// Classify applies the rules in fixed priority order; the first match wins.
// A top-level custom page is never treated as a category index, even when it
// has content and children.
func Classify(f Facts) Rule {
	nested := f.ChildCount > 0 || f.LinkCount > 0
	switch {
	case f.IsRoot:
		return RuleRoot
	case f.IsTopLevelCustom:
		return RuleCustom
	case f.HasContent && nested:
		return RuleCategoryIndex
	case f.HasContent:
		return RuleContent
	case nested:
		return RuleLevel
	default:
		return RuleEmpty
	}
}
