// Package rectpack 把任意数量、任意尺寸的矩形打包进一个尽量小的矩形区域（图集）。
//
// 打包器不限制图集的最大尺寸：它从最大的矩形开始，每当现有的空闲区域
// 放不下新矩形时就沿较短的一边扩展图集，并把扩展后留下的空白记录为
// 空闲区域，供后续更小的矩形复用。结果是确定的：相同的输入总是得到
// 相同的输出。
package rectpack

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrEmpty 表示没有需要打包的矩形。
	ErrEmpty = errors.New("rectpack: no rectangles to pack")
	// ErrInvalidSize 表示某个矩形的宽或高不大于0。
	ErrInvalidSize = errors.New("rectpack: width and height must be greater than 0")
)

// Packer 包含打包器的配置，一次打包的中间状态只存在于 Pack 调用内部，
// 因此同一个 Packer 可以被顺序地重复使用。
type Packer struct {
	// Padding 定义每个矩形右侧和下方预留的空隙大小。值为0或负数
	// 表示矩形将被紧密排列
	//
	// 默认值：0
	Padding int

	// sortFunc 定义在排序时用于比较尺寸大小的函数
	//
	// 默认值：SortDefault
	sortFunc SortFunc
}

// NewPacker 创建使用默认配置的打包器
func NewPacker() *Packer {
	return &Packer{sortFunc: SortDefault}
}

// Sorter 设置打包前的排序函数，nil 表示恢复默认的 SortDefault。
// 比较结果相等的矩形保持输入顺序。
func (p *Packer) Sorter(compare SortFunc) {
	p.sortFunc = compare
}

// Pack 使用默认配置打包 sizes，见 Packer.Pack。
func Pack(sizes []Size) (*Result, error) {
	return NewPacker().Pack(sizes)
}

// Pack 打包所有矩形并返回图集尺寸以及每个矩形的位置
// 参数:
//
//	sizes - 待打包的矩形，至少一个，宽高必须大于0
//
// 返回:
//
//	*Result - Positions[i] 对应 sizes[i]
//	error - sizes 为空时返回 ErrEmpty，尺寸无效时返回包装了 ErrInvalidSize 的错误
func (p *Packer) Pack(sizes []Size) (*Result, error) {
	if len(sizes) == 0 {
		return nil, ErrEmpty
	}
	for i, size := range sizes {
		if size.IsEmpty() {
			return nil, fmt.Errorf("%w (index %d, given %v)", ErrInvalidSize, i, size)
		}
	}
	t := p.build(sizes)
	return t.result(len(sizes)), nil
}

// build 排序并逐个放置矩形，返回完成后的打包树。
func (p *Packer) build(sizes []Size) *tree {
	compare := p.sortFunc
	if compare == nil {
		compare = SortDefault
	}
	nodes := make([]*node, len(sizes))
	for i, size := range sizes {
		padSize(&size, p.Padding)
		nodes[i] = newLeaf(i, size)
	}
	slices.SortStableFunc(nodes, func(a, b *node) int {
		return compare(sizes[a.id], sizes[b.id])
	})
	var t tree
	for _, n := range nodes {
		t.insert(n)
	}
	return &t
}

// padSize 在给定的尺寸上加上指定的间距
func padSize(size *Size, padding int) {
	if padding <= 0 {
		return
	}
	size.Width += padding
	size.Height += padding
}

// internal 是内部节点的 id。
const internal = -1

// node 是打包树中的节点。叶子节点对应一个输入矩形，内部节点只负责
// 组合子节点。x、y 是相对父节点的偏移。
type node struct {
	id            int
	x, y          int
	width, height int
	// rotated 表示该节点相对父节点旋转了90°，
	// width、height 始终是旋转前的尺寸。
	rotated  bool
	children []*node
}

func newLeaf(id int, size Size) *node {
	return &node{id: id, width: size.Width, height: size.Height}
}

func (n *node) isLeaf() bool {
	return n.id != internal
}

func (n *node) minSide() int {
	return min(n.width, n.height)
}

func (n *node) maxSide() int {
	return max(n.width, n.height)
}

// footprint 返回节点在父节点坐标系中占用的宽高。
func (n *node) footprint() (width, height int) {
	if n.rotated {
		return n.height, n.width
	}
	return n.width, n.height
}

// freeSpace 是某个节点内部一块尚未使用的矩形区域，坐标相对 owner。
type freeSpace struct {
	owner            *node
	x, y             int
	width, height    int
	minSide, maxSide int
}

func (f *freeSpace) area() int {
	return f.width * f.height
}

// tree 保存一次打包过程中的全部状态。
type tree struct {
	root *node
	free []freeSpace
}

// insert 放置一个矩形：优先填入能容纳它的最小空闲区域，否则扩展图集。
func (t *tree) insert(n *node) {
	if t.root == nil {
		t.root = n
		return
	}
	if i := t.bestFit(n); i >= 0 {
		t.fill(n, i)
		return
	}
	t.root = t.merge(t.root, n)
}

// bestFit 返回能以任一方向容纳 n 的面积最小的空闲区域下标，面积相同时
// 取先找到的；没有时返回 -1。
func (t *tree) bestFit(n *node) int {
	minSide, maxSide := n.minSide(), n.maxSide()
	best := -1
	for i := range t.free {
		f := &t.free[i]
		if f.minSide < minSide || f.maxSide < maxSide {
			continue
		}
		if best == -1 || f.area() < t.free[best].area() {
			best = i
		}
	}
	return best
}

func (t *tree) addFree(owner *node, x, y, width, height int) {
	t.free = append(t.free, freeSpace{
		owner:   owner,
		x:       x,
		y:       y,
		width:   width,
		height:  height,
		minSide: min(width, height),
		maxSide: max(width, height),
	})
}

// fill 把 n 放进第 i 个空闲区域的左上角，剩余部分按面积较大的一侧
// 切成最多两块新的空闲区域。
func (t *tree) fill(n *node, i int) {
	f := t.free[i]
	t.free = slices.Delete(t.free, i, i+1)

	width, height := n.width, n.height
	if width > f.width || height > f.height {
		width, height = height, width
		n.rotated = true
	}
	n.x, n.y = f.x, f.y
	f.owner.children = append(f.owner.children, n)

	right := (f.width - width) * f.height
	bottom := f.width * (f.height - height)
	if right > bottom {
		// 右侧整条作为主区域，下方只取矩形宽度
		t.addFree(f.owner, f.x+width, f.y, f.width-width, f.height)
		if bottom > 0 {
			t.addFree(f.owner, f.x, f.y+height, width, f.height-height)
		}
		return
	}
	// 下方整条作为主区域，右侧只取矩形高度。
	// 两侧面积相等时同样保留两块
	if bottom > 0 {
		t.addFree(f.owner, f.x, f.y+height, f.width, f.height-height)
	}
	if right > 0 {
		t.addFree(f.owner, f.x+width, f.y, f.width-width, height)
	}
}

// merge 把 a、b 合并成新的根节点。最长边较大的一方作为基底，
// 另一方沿基底较短的一边拼接，使图集保持接近正方形。
func (t *tree) merge(a, b *node) *node {
	if a.maxSide() < b.maxSide() {
		return t.merge(b, a)
	}
	horizontal := a.width < a.height
	b.rotated = (b.width < b.height) != horizontal
	bw, bh := b.footprint()

	parent := &node{id: internal}
	a.x, a.y = 0, 0
	if horizontal {
		b.x, b.y = a.width, 0
		parent.width = a.width + bw
		parent.height = max(a.height, bh)
	} else {
		b.x, b.y = 0, a.height
		parent.width = max(a.width, bw)
		parent.height = a.height + bh
	}
	parent.children = []*node{a, b}

	if horizontal {
		if bh < parent.height {
			t.addFree(parent, b.x, bh, bw, parent.height-bh)
		}
	} else if bw < parent.width {
		t.addFree(parent, bw, b.y, parent.width-bw, bh)
	}
	return parent
}

// walk 深度优先遍历整棵树，fn 收到每个节点在根坐标系中的位置。
// 祖先累计旋转时，子节点的局部偏移需要交换 x、y。
func (t *tree) walk(fn func(n *node, x, y int, rotated bool)) {
	var visit func(n *node, x, y int, rotated bool)
	visit = func(n *node, x, y int, rotated bool) {
		fn(n, x, y, rotated)
		for _, c := range n.children {
			cx, cy := c.x, c.y
			if rotated {
				cx, cy = cy, cx
			}
			visit(c, x+cx, y+cy, rotated != c.rotated)
		}
	}
	visit(t.root, t.root.x, t.root.y, t.root.rotated)
}

func (t *tree) result(count int) *Result {
	res := &Result{
		Width:     t.root.width,
		Height:    t.root.height,
		Positions: make([]Position, count),
	}
	t.walk(func(n *node, x, y int, rotated bool) {
		if n.isLeaf() {
			res.Positions[n.id] = Position{X: x, Y: y, Rotated: rotated}
		}
	})
	return res
}
