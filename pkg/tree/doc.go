/*
Package tree implements compiled decision trees.

A tree is assembled bottom-up with Builders. Each Builder collects the mappings
of one node (keys to child nodes, result leaves or aliases of sibling keys),
resolves its aliases and freezes the node on Build. Completeness is checked by
a separate, explicit Validate pass over the finished tree, so partially built
subtrees can still be inspected.

Once built, a Node and the DecisionTree wrapping it are immutable and may be
evaluated from any number of goroutines without locking.

# Node kinds

  - Boolean: exactly one branch for "true" and one for "false".
  - Integer range: the branch of the greatest threshold not above the fact.
    "unbounded" is the catch-all lowest threshold.
  - String enum: exact match, falling back to the input type's default value.
*/
package tree
