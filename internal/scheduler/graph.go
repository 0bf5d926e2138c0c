package scheduler

import (
	"fmt"

	"github.com/alexanderramin/workplan/internal/domain"
)

// Reachable reports whether to can be reached from from by repeatedly
// following next. Adding the edge to -> from would close a cycle exactly
// when this returns true.
func Reachable(from, to string, next func(id string) ([]string, error)) (bool, error) {
	if from == to {
		return true, nil
	}
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		ids, err := next(id)
		if err != nil {
			return false, err
		}
		for _, n := range ids {
			if n == to {
				return true, nil
			}
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false, nil
}

// PredecessorsFirst reorders tasks so that each one follows the tasks named
// for it in preds, keeping the input order wherever the edges allow. Ids in
// preds that are not in tasks are ignored. A cycle among the tasks fails
// with domain.ErrDependencyCycle.
func PredecessorsFirst(tasks []*domain.Task, preds map[string][]string) ([]*domain.Task, error) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}
	pending := make([]int, len(tasks))
	dependents := make(map[int][]int)
	for i, t := range tasks {
		for _, p := range preds[t.ID] {
			j, ok := index[p]
			if !ok || j == i {
				continue
			}
			pending[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	out := make([]*domain.Task, 0, len(tasks))
	placed := make([]bool, len(tasks))
	for len(out) < len(tasks) {
		next := -1
		for i := range tasks {
			if !placed[i] && pending[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("%d tasks wait on each other: %w", len(tasks)-len(out), domain.ErrDependencyCycle)
		}
		placed[next] = true
		out = append(out, tasks[next])
		for _, d := range dependents[next] {
			pending[d]--
		}
	}
	return out, nil
}

// CheckPrecedence reports whether every chain (an assignee's tasks in
// placement order) and every predecessor edge can hold at the same time.
// Each chain orders its tasks one after the other and each entry of preds
// puts the named predecessors before the task. Only ids that appear in some
// chain take part. A cycle through the combined edges fails with
// domain.ErrDependencyCycle.
func CheckPrecedence(chains [][]string, preds map[string][]string) error {
	pending := make(map[string]int)
	next := make(map[string][]string)
	var nodes []string
	for _, chain := range chains {
		for i, id := range chain {
			if _, ok := pending[id]; !ok {
				pending[id] = 0
				nodes = append(nodes, id)
			}
			if i > 0 {
				next[chain[i-1]] = append(next[chain[i-1]], id)
				pending[id]++
			}
		}
	}
	for _, id := range nodes {
		for _, p := range preds[id] {
			if _, ok := pending[p]; !ok || p == id {
				continue
			}
			next[p] = append(next[p], id)
			pending[id]++
		}
	}

	var ready []string
	for _, id := range nodes {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}
	done := 0
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		done++
		for _, n := range next[id] {
			pending[n]--
			if pending[n] == 0 {
				ready = append(ready, n)
			}
		}
	}
	if done < len(nodes) {
		return fmt.Errorf("%d tasks are queued behind their own dependents: %w", len(nodes)-done, domain.ErrDependencyCycle)
	}
	return nil
}
