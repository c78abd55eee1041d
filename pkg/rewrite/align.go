package rewrite

import "github.com/yaklabco/flowfix/pkg/jast"

type stepKind uint8

const (
	stepKeep stepKind = iota
	stepDelete
	stepInsert
)

// step is one entry of an edit script turning an original child list into
// its overlay list.
type step struct {
	kind   stepKind
	orig   int
	target int
}

// align computes a minimal edit script between orig and target by longest
// common subsequence over node identity. Deletions are preferred over
// insertions at ties so that a removed run precedes what replaces it.
func align(orig, target []*jast.Node) []step {
	n, m := len(orig), len(target)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if orig[i] == target[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	steps := make([]step, 0, max(n, m))
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case orig[i] == target[j]:
			steps = append(steps, step{kind: stepKeep, orig: i, target: j})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			steps = append(steps, step{kind: stepDelete, orig: i, target: -1})
			i++
		default:
			steps = append(steps, step{kind: stepInsert, orig: -1, target: j})
			j++
		}
	}
	for ; i < n; i++ {
		steps = append(steps, step{kind: stepDelete, orig: i, target: -1})
	}
	for ; j < m; j++ {
		steps = append(steps, step{kind: stepInsert, orig: -1, target: j})
	}
	return steps
}
