// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reach

import (
	"github.com/defi-wonderland/atlas/graph"
	"github.com/defi-wonderland/atlas/ids"
)

// bfs builds a TransitiveGraph rooted at root. When full is false, only
// explicit edges are followed; when true, each visited node's topic
// edges are additionally expanded to every other member of that topic.
//
// The BFS contract (spec.md §4.3): candidates at each node are visited in
// deterministic (SpaceID-sorted) order; a candidate already visited in
// this traversal is skipped rather than re-enqueued or duplicated, so the
// first path discovered wins and tree depth reflects shortest-path
// distance from root.
func bfs(root ids.SpaceID, state *graph.State, full bool) *TransitiveGraph {
	rootNode := graph.NewRoot(root)
	visited := map[ids.SpaceID]struct{}{root: {}}
	queue := []*graph.TreeNode{rootNode}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range state.GetExplicitChildren(current.SpaceID) {
			if _, seen := visited[edge.Target]; seen {
				continue
			}
			child := graph.NewExplicit(edge.Target, edge.Kind)
			current.AddChild(child)
			visited[edge.Target] = struct{}{}
			queue = append(queue, child)
		}

		if !full {
			continue
		}
		for _, topicID := range state.GetTopicChildren(current.SpaceID) {
			for _, member := range state.GetTopicMembers(topicID) {
				if member == current.SpaceID {
					continue
				}
				if _, seen := visited[member]; seen {
					continue
				}
				child := graph.NewTopic(member, topicID)
				current.AddChild(child)
				visited[member] = struct{}{}
				queue = append(queue, child)
			}
		}
	}

	return &TransitiveGraph{Tree: rootNode, Flat: visited}
}
