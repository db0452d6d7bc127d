// Package list provides a doubly linked list whose insertions return
// stable Location handles, enabling O(1) removal without a search.
//
// Handles are generation-tagged: using a Location after its node has been
// removed is detected and reported as ErrInvalidLocation rather than
// corrupting the chain. Lists are not safe for concurrent use.
package list
