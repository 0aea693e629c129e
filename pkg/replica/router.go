package replica

import "strings"

// Inbound is a message received from a link, dispatched on the simulation
// goroutine.
type Inbound struct {
	From *Link
	Path string
	Data []byte
}

type Handler func(msg Inbound)

type routerNode struct {
	children  map[string]*routerNode
	handlers  []Handler
	wildcards []Handler
}

func newRouterNode() *routerNode {
	return &routerNode{children: make(map[string]*routerNode)}
}

// Router dispatches dot separated paths. A trailing "*" segment matches
// every path below its prefix.
type Router struct {
	sep      string
	root     *routerNode
	fallback []Handler
}

func NewRouter() *Router {
	return &Router{
		sep:  ".",
		root: newRouterNode(),
	}
}

func (r *Router) Handle(route string, handler Handler) {
	if route == "" || strings.HasPrefix(route, r.sep) {
		return
	}

	parts := strings.Split(route, r.sep)
	node := r.root

	for i, part := range parts {
		if part == "*" {
			if i == len(parts)-1 {
				node.wildcards = append(node.wildcards, handler)
			}
			return
		}

		next, ok := node.children[part]
		if !ok {
			next = newRouterNode()
			node.children[part] = next
		}
		node = next
	}

	node.handlers = append(node.handlers, handler)
}

func (r *Router) HandleFallback(handler Handler) {
	r.fallback = append(r.fallback, handler)
}

func (r *Router) matching(path string) []Handler {
	if path == "" || strings.HasPrefix(path, r.sep) {
		return nil
	}

	var matching []Handler
	node := r.root
	found := true

	for _, part := range strings.Split(path, r.sep) {
		matching = append(matching, node.wildcards...)

		next, ok := node.children[part]
		if !ok {
			found = false
			break
		}
		node = next
	}
	if found {
		matching = append(matching, node.handlers...)
	}

	if len(matching) == 0 {
		matching = append(matching, r.fallback...)
	}
	return matching
}

// Dispatch runs every handler matching msg.Path. It reports whether any
// handler ran.
func (r *Router) Dispatch(msg Inbound) bool {
	handlers := r.matching(msg.Path)
	for _, h := range handlers {
		h(msg)
	}
	return len(handlers) > 0
}
