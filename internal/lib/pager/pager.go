// Package pager computes the compressed page-number sequence for a numbered
// pager control: "1 2 … 8 9 10 … 19 20".
package pager

import "sort"

// Item is one pager marker: a concrete page number or an ellipsis gap.
type Item struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// windowThreshold is the largest total rendered without compression.
const windowThreshold = 7

// Window returns the ordered marker sequence for current within total pages.
// Up to the threshold every page is listed. Past it the edges (1, 2 and
// total-1, total) and the current page with its neighbours are kept, and a
// single ellipsis stands in for every gap wider than one. Same inputs always
// produce the same sequence.
func Window(current, total int) []Item {
	if total < 1 {
		total = 1
	}
	current = Clamp(current, total)

	if total <= windowThreshold {
		out := make([]Item, 0, total)
		for p := 1; p <= total; p++ {
			out = append(out, Item{Page: p})
		}
		return out
	}

	keep := map[int]struct{}{}
	for _, p := range []int{1, 2, total - 1, total, current - 1, current, current + 1} {
		if p >= 1 && p <= total {
			keep[p] = struct{}{}
		}
	}

	nums := make([]int, 0, len(keep))
	for p := range keep {
		nums = append(nums, p)
	}
	sort.Ints(nums)

	out := make([]Item, 0, len(nums)+2)
	for i, p := range nums {
		out = append(out, Item{Page: p})
		if i+1 < len(nums) && nums[i+1]-p > 1 {
			out = append(out, Item{Ellipsis: true})
		}
	}
	return out
}

// Clamp forces page into [1, total]. Applied whenever the total recomputes
// so the current page never points past the end.
func Clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// TotalPages derives the page count for count items at size per page,
// never less than one.
func TotalPages(count, size int) int {
	if size < 1 {
		return 1
	}
	total := (count + size - 1) / size
	if total < 1 {
		total = 1
	}
	return total
}
