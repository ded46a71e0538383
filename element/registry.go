package element

import (
	"fmt"
	"sort"
)

// Constructor 根据 ID 创建一个元素。
type Constructor func(id string) (Element, error)

// Registry 把类型名映射到构造函数，由宿主显式创建并传递，不存在进程级的全局注册表。
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: map[string]Constructor{}}
}

// Register 注册类型名；重复注册同一类型名返回错误。
func (r *Registry) Register(kind string, ctor Constructor) error {
	if kind == "" {
		return fmt.Errorf("元素类型名不能为空")
	}
	if ctor == nil {
		return fmt.Errorf("元素类型 %s 缺少构造函数", kind)
	}
	if _, ok := r.ctors[kind]; ok {
		return fmt.Errorf("元素类型 %s 已注册", kind)
	}
	r.ctors[kind] = ctor
	return nil
}

// New creates an element of the given kind.
func (r *Registry) New(kind, id string) (Element, error) {
	ctor, ok := r.ctors[kind]
	if !ok {
		return nil, fmt.Errorf("未知的元素类型：%s", kind)
	}
	el, err := ctor(id)
	if err != nil {
		return nil, fmt.Errorf("创建元素 %s(%s) 失败: %w", kind, id, err)
	}
	return el, nil
}

// Kinds returns the registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.ctors))
	for k := range r.ctors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
