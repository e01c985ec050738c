// Package ir is the in-memory model graph the dumper operates on.
//
// A Graph owns its nodes. Edges live on the consumer side as ordered
// input Values (producer node + output port) and the Graph keeps the
// reverse consumer index so that a producer output can be traced to every
// input it feeds. Nodes are added in topological order: a node may only
// reference producers that are already part of the graph.
//
// Node kinds form a closed set (operator, parameter, constant, result)
// and are queried through small capability methods instead of type
// switches on concrete operator structs.
package ir
