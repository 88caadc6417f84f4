//go:build debug
// +build debug

package helios

import "fmt"

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("index %d out of range [0, %d)", i, n))
	}
}

func checkRange(r Range, n int) {
	if r.Start < 0 || r.End > n || r.Start > r.End {
		panic(fmt.Sprintf("range %v out of bounds [0, %d)", r, n))
	}
}
