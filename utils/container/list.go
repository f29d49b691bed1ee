package container

import (
	"fmt"
	"log"

	"git.fiblab.net/general/common/v2/mathutil"
)

// IQueued 可在车道队列中排队的元素
type IQueued interface {
	Length() float64 // 车身长度
}

// ListNode 队列节点
// 说明：S为元素沿行驶方向的进度，由使用者在每步更新后写入
type ListNode[T IQueued] struct {
	owner      *List[T]
	prev, next *ListNode[T]

	S     float64
	Value T
}

func (n *ListNode[T]) String() string {
	return fmt.Sprintf("Node{S:%v, Value:%+v}", n.S, n.Value)
}

// Prev 前一个节点（更靠前的元素），队首返回nil
func (n *ListNode[T]) Prev() *ListNode[T] { return n.prev }

// Next 后一个节点（更靠后的元素），队尾返回nil
func (n *ListNode[T]) Next() *ListNode[T] { return n.next }

func (n *ListNode[T]) L() float64 { return n.Value.Length() }

// Gap 本元素头部到前一个元素尾部的距离
// 返回：队首返回mathutil.INF
// 说明：同一队列中的元素从同一起点出发，进度之差即为头部间距
func (n *ListNode[T]) Gap() float64 {
	if n.prev == nil {
		return mathutil.INF
	}
	return n.prev.S - n.prev.L() - n.S
}

// List 先进先出的双向链表
// 功能：元素只从尾部入队，出队不改变其余元素的相对顺序
// 说明：因此任一节点的前驱即为其前车
type List[T IQueued] struct {
	ID string

	front, back *ListNode[T]
	size        int
}

func (l *List[T]) String() string {
	return fmt.Sprintf("List{ID:%v, Len:%d}", l.ID, l.size)
}

func (l *List[T]) Len() int { return l.size }

// First 队首节点，空队列返回nil
func (l *List[T]) First() *ListNode[T] { return l.front }

// Values 从队首到队尾的元素
func (l *List[T]) Values() []T {
	values := make([]T, 0, l.size)
	for n := l.front; n != nil; n = n.next {
		values = append(values, n.Value)
	}
	return values
}

// PushBack 入队
// 说明：节点已在某个队列中时panic
func (l *List[T]) PushBack(n *ListNode[T]) {
	if n.owner != nil {
		log.Panicf("push %v into %v: node already in %v", n, l, n.owner)
	}
	n.owner = l
	n.prev, n.next = l.back, nil
	if l.back == nil {
		l.front = n
	} else {
		l.back.next = n
	}
	l.back = n
	l.size++
}

func (l *List[T]) unlink(n *ListNode[T]) {
	if n.prev == nil {
		l.front = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		l.back = n.prev
	} else {
		n.next.prev = n.prev
	}
	n.owner, n.prev, n.next = nil, nil, nil
	l.size--
}

// RemoveIf 摘除所有满足pred的节点
// 返回：被摘除的节点，保持原有顺序
func (l *List[T]) RemoveIf(pred func(n *ListNode[T]) bool) (removed []*ListNode[T]) {
	n := l.front
	for n != nil {
		next := n.next
		if pred(n) {
			l.unlink(n)
			removed = append(removed, n)
		}
		n = next
	}
	return
}

// Clear 清空队列，所有节点回到未入队状态
func (l *List[T]) Clear() {
	for n := l.front; n != nil; {
		next := n.next
		n.owner, n.prev, n.next = nil, nil, nil
		n = next
	}
	l.front, l.back, l.size = nil, nil, 0
}
