// Package analysis classifies JSX for code generation.
//
// The Classifier walks each root once, depth-first in source order, and
// tags every attribute and child Static (foldable into a template skeleton)
// or Dynamic. Dynamic positions inside an element tree become Bindings on
// the template root, each carrying the SlotPath of the node it attaches to.
// Paths count DOM children of the skeleton: fragments are flattened,
// adjacent text merges into one node and every dynamic child with siblings
// reserves a placeholder marker.
//
// Components never join a template. They become Child bindings of the
// surrounding element, and their props and children are classified as
// independent roots. Built-in control-flow components are resolved here
// so their children can be wrapped in a Deferred node.
package analysis
