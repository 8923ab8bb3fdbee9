package css_modifier

import (
	"github.com/excurso/hspp/internal/css_ast"
)

// @media restructuring. Every @media at-rule seen during traversal is
// collected; after the top-level stylesheet has been visited, rules whose
// media query lists are semantically equal are merged by appending the later
// rule's block onto the earlier one and removing the later rule.
//
// Equality splits each query by "and" and compares the resulting groups of
// sub-expressions as sets, using structural value equality, so two textually
// identical queries parsed from different files still merge.

type collectedMediaRule struct {
	rule  *css_ast.AtRule
	owner *css_ast.Block

	// Stylesheet depth at collection time. Rules from stylesheets written as
	// separate output files sit at depth > 1 and must not merge with the
	// top-level stylesheet.
	depth int
}

type restructuring struct {
	mediaRules []collectedMediaRule
}

func (r *restructuring) appendMediaRule(rule *css_ast.AtRule, owner *css_ast.Block, depth int) {
	r.mediaRules = append(r.mediaRules, collectedMediaRule{rule: rule, owner: owner, depth: depth})
}

func (r *restructuring) restructure(m *Modifier, sheet *css_ast.Block) {
	if !m.options.MergeMediaRules {
		return
	}
	r.mergeMediaRules()
}

func (r *restructuring) mergeMediaRules() {
	if len(r.mediaRules) < 2 {
		return
	}

	merged := make([]bool, len(r.mediaRules))

	for i := 0; i < len(r.mediaRules)-1; i++ {
		if merged[i] {
			continue
		}
		first := r.mediaRules[i]
		if first.rule.Block == nil || first.depth != 1 {
			continue
		}

		for j := i + 1; j < len(r.mediaRules); j++ {
			if merged[j] {
				continue
			}
			second := r.mediaRules[j]
			if second.rule.Block == nil || second.depth != 1 {
				continue
			}

			if mediaQueryListsEqual(first.rule.Expressions, second.rule.Expressions) {
				// A rule that is not an element of its owner (a synthetic
				// @media spliced in for an import's media query) cannot be
				// removed, so it must not be merged away either
				if second.owner.RemoveElement(second.rule) {
					first.rule.Block.Elements = append(first.rule.Block.Elements, second.rule.Block.Elements...)
					merged[j] = true
				}
			}
		}
	}
}

func mediaQueryListsEqual(a [][]css_ast.N, b [][]css_ast.N) bool {
	if len(a) != len(b) {
		return false
	}
	for _, list := range a {
		if !mediaQueryExists(b, list) {
			return false
		}
	}
	return true
}

func mediaQueryExists(lists [][]css_ast.N, list []css_ast.N) bool {
	groups := splitByAnd(list)
	for _, candidate := range lists {
		if expressionGroupsEqual(splitByAnd(candidate), groups) {
			return true
		}
	}
	return false
}

// Splits "screen and (min-width: 600px)" at its "and" identifiers
func splitByAnd(list []css_ast.N) [][]css_ast.N {
	var groups [][]css_ast.N
	var group []css_ast.N

	for _, element := range list {
		if identifier, ok := css_ast.Resolve(element).(*css_ast.Identifier); ok && *identifier.Name == "and" {
			groups = append(groups, group)
			group = nil
			continue
		}
		group = append(group, element)
	}
	return append(groups, group)
}

// Set comparison: every group of one side has a structurally equal group on
// the other
func expressionGroupsEqual(a [][]css_ast.N, b [][]css_ast.N) bool {
	if len(a) != len(b) {
		return false
	}
	for _, group := range a {
		if !groupExists(b, group) {
			return false
		}
	}
	for _, group := range b {
		if !groupExists(a, group) {
			return false
		}
	}
	return true
}

func groupExists(groups [][]css_ast.N, group []css_ast.N) bool {
	for _, candidate := range groups {
		if groupsEqual(candidate, group) {
			return true
		}
	}
	return false
}

func groupsEqual(a []css_ast.N, b []css_ast.N) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !css_ast.NodesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
