package rectpack

import (
	"cmp"
	"fmt"
	"strings"
)

// SortFunc 定义矩形尺寸比较函数的原型
// 返回值:
//
//	-1: a 排在 b 之前
//	 0: 相等
//	 1: a 排在 b 之后
type SortFunc func(a, b Size) int

// SortDefault 是默认的打包顺序：面积降序，最长边降序，最短边升序。
func SortDefault(a, b Size) int {
	if c := cmp.Compare(b.Area(), a.Area()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.MaxSide(), a.MaxSide()); c != 0 {
		return c
	}
	return cmp.Compare(a.MinSide(), b.MinSide())
}

// SortArea 按矩形面积降序排序(从大到小)
func SortArea(a, b Size) int {
	return cmp.Compare(b.Area(), a.Area())
}

// SortPerimeter 按矩形周长降序排序(从大到小)
func SortPerimeter(a, b Size) int {
	return cmp.Compare(b.Perimeter(), a.Perimeter())
}

// SortMaxSide 按矩形最长边降序排序(从大到小)
func SortMaxSide(a, b Size) int {
	return cmp.Compare(b.MaxSide(), a.MaxSide())
}

// SortMinSide 按矩形最短边降序排序(从大到小)
func SortMinSide(a, b Size) int {
	return cmp.Compare(b.MinSide(), a.MinSide())
}

// thenDefault 在 compare 相等时退回 SortDefault。
func thenDefault(compare SortFunc) SortFunc {
	return func(a, b Size) int {
		if c := compare(a, b); c != 0 {
			return c
		}
		return SortDefault(a, b)
	}
}

// ResolveSort 根据名称返回排序函数，名称不区分大小写。
func ResolveSort(name string) (SortFunc, error) {
	switch strings.ToLower(name) {
	case "", "default", "area":
		return SortDefault, nil
	case "perimeter":
		return thenDefault(SortPerimeter), nil
	case "maxside":
		return thenDefault(SortMaxSide), nil
	case "minside":
		return thenDefault(SortMinSide), nil
	}
	return nil, fmt.Errorf("unknown sort order %q (area, perimeter, maxside, minside)", name)
}
