// Package element 提供宿主侧的可视元素：以组合方式嵌入 Node，并由显式的 Registry 按类型名创建。
package element

// Node 是所有可视元素共享的位置与可见性状态。
type Node struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Visible bool    `json:"visible"`
}

// Base returns the node itself so that embedding elements satisfy Element.
func (n *Node) Base() *Node { return n }

// MoveTo sets the element position in container coordinates.
func (n *Node) MoveTo(x, y float64) {
	n.X, n.Y = x, y
}

// Element 是 Registry 可以创建的元素。
type Element interface {
	Base() *Node
	Validate() error
	Dispose()
}
