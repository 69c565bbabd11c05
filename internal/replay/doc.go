// Package replay turns the ordered lines of one (target, thread) into thread instances
// by walking the graph model with an explicit call stack.
package replay
