package rectpack

import "fmt"

// Point 描述了二维空间中的一个位置。
type Point struct {
	// X 是在水平 x 轴上的位置。
	X int `json:"x"`
	// Y 是在垂直 y 轴上的位置。
	Y int `json:"y"`
}

// NewPoint 初始化一个具有指定坐标的新点。
func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// String 返回点的字符串表示形式。
func (p Point) String() string {
	return fmt.Sprintf("[%v, %v]", p.X, p.Y)
}

// Size 描述了一个待打包矩形的尺寸，矩形的身份是它在输入切片中的下标。
type Size struct {
	// Width 是在水平 x 轴上的尺寸。
	Width int `json:"width"`
	// Height 是在垂直 y 轴上的尺寸。
	Height int `json:"height"`
}

// NewSize 创建具有指定尺寸的新尺寸对象。
func NewSize(width, height int) Size {
	return Size{Width: width, Height: height}
}

// String 返回尺寸的字符串表示形式。
func (sz Size) String() string {
	return fmt.Sprintf("%vx%v", sz.Width, sz.Height)
}

// Area 返回总面积（宽度 * 高度）。
func (sz Size) Area() int {
	return sz.Width * sz.Height
}

// Perimeter 返回所有边的总长度。
func (sz Size) Perimeter() int {
	return (sz.Width + sz.Height) << 1
}

// MaxSide 返回较大边的值。
func (sz Size) MaxSide() int {
	return max(sz.Width, sz.Height)
}

// MinSide 返回较小边的值。
func (sz Size) MinSide() int {
	return min(sz.Width, sz.Height)
}

// Rotated 返回宽高互换后的尺寸。
func (sz Size) Rotated() Size {
	return Size{Width: sz.Height, Height: sz.Width}
}

// IsEmpty 测试宽度或高度是否小于1。
func (sz Size) IsEmpty() bool {
	return sz.Width <= 0 || sz.Height <= 0
}

// Rect 描述了矩形在图集中实际占用的区域（左上角和旋转后的尺寸）。
type Rect struct {
	Point
	Size
	// Rotated 指示矩形是否已旋转90°，此时 Size 已经是交换后的宽高。
	Rotated bool `json:"rotated,omitempty"`
}

// NewRect 初始化一个使用指定点和尺寸值的新矩形。
func NewRect(x, y, w, h int) Rect {
	return Rect{
		Point: Point{X: x, Y: y},
		Size:  Size{Width: w, Height: h},
	}
}

// String 返回描述矩形的字符串。
func (r Rect) String() string {
	return fmt.Sprintf("[%v, %v, %v, %v]", r.X, r.Y, r.Width, r.Height)
}

// Right 返回矩形右边缘在 x 轴上的坐标。
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom 返回矩形下边缘在 y 轴上的坐标。
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// ContainsRect 测试指定的矩形是否包含在当前接收者的边界内。
func (r Rect) ContainsRect(rect Rect) bool {
	return r.X <= rect.X &&
		rect.Right() <= r.Right() &&
		r.Y <= rect.Y &&
		rect.Bottom() <= r.Bottom()
}

// Intersects 测试接收者是否与指定的矩形有任何重叠，仅共享边不算重叠。
func (r Rect) Intersects(rect Rect) bool {
	return rect.X < r.Right() &&
		r.X < rect.Right() &&
		rect.Y < r.Bottom() &&
		r.Y < rect.Bottom()
}

// Position 是一个输入矩形的打包结果。
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	// Rotated 为 true 时矩形占用 height×width 而不是 width×height。
	Rotated bool `json:"rotated"`
}

// Result 是一次打包的结果。Positions 与输入切片一一对应。
type Result struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Positions []Position `json:"positions"`
}

// Size 返回图集的尺寸。
func (r *Result) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Rect 返回第 i 个矩形在图集中的实际占用区域。size 必须是传给 Pack 的原始尺寸。
func (r *Result) Rect(i int, size Size) Rect {
	pos := r.Positions[i]
	if pos.Rotated {
		size = size.Rotated()
	}
	return Rect{
		Point:   Point{X: pos.X, Y: pos.Y},
		Size:    size,
		Rotated: pos.Rotated,
	}
}

// Rects 返回所有矩形的占用区域，顺序与 sizes 相同。
func (r *Result) Rects(sizes []Size) []Rect {
	rects := make([]Rect, len(sizes))
	for i, size := range sizes {
		rects[i] = r.Rect(i, size)
	}
	return rects
}

// UsedArea 返回 sizes 的总面积。
func (r *Result) UsedArea(sizes []Size) int {
	var area int
	for _, size := range sizes {
		area += size.Area()
	}
	return area
}

// Utilization 计算空间利用率(0.0-1.0)
func (r *Result) Utilization(sizes []Size) float64 {
	bin := r.Width * r.Height
	if bin == 0 {
		return 0
	}
	return float64(r.UsedArea(sizes)) / float64(bin)
}
