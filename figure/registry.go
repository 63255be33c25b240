package figure

import (
	"sort"
	"sync"
)

// The open-figure registry is process-global, mirroring how a chart
// library tracks every figure a test created until something closes
// it. The comparison harness treats a non-empty registry at setup as
// a leaked-state programmer error.
var reg = struct {
	mu      sync.Mutex
	open    map[int]*Figure
	nextNum int
}{
	open: make(map[int]*Figure),
}

// register assigns the next figure number and records f open.
func register(f *Figure) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.nextNum++
	reg.open[reg.nextNum] = f
	return reg.nextNum
}

// unregister removes a figure number. Unknown numbers are a no-op,
// which makes Figure.Close idempotent.
func unregister(num int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.open, num)
}

// Fignums returns the numbers of all open figures, ascending.
func Fignums() []int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	nums := make([]int, 0, len(reg.open))
	for num := range reg.open {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}

// Get returns the open figure with the given number, or nil.
func Get(num int) *Figure {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.open[num]
}

// Close closes the figure with the given number. Unknown numbers are
// a no-op.
func Close(num int) {
	unregister(num)
}

// CloseAll closes every open figure. The numbering sequence is not
// reset: figure numbers stay unique across a test run, so a leak
// report never aliases an earlier figure.
func CloseAll() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.open = make(map[int]*Figure)
}
