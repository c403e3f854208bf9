// layout.go - VBox/HBox layout pass with padding, gap, and Spacer
// elements, per spec.md §4.7.

package main

const (
	defaultPadding = 4
	defaultGap     = 2
)

// LaidOutElement pairs a parsed Element with its computed screen rect.
type LaidOutElement struct {
	El   *Element
	Rect Rect
}

// LayoutBox arranges children along an axis, giving every Spacer an
// equal share of the leftover main-axis space.
func LayoutBox(el *Element, bounds Rect, vertical bool) []LaidOutElement {
	padding, _ := el.AttrInt("padding", defaultPadding)
	gap, _ := el.AttrInt("gap", defaultGap)

	inner := Rect{
		X: bounds.X + int32(padding),
		Y: bounds.Y + int32(padding),
		W: max0(bounds.W - 2*padding),
		H: max0(bounds.H - 2*padding),
	}

	n := len(el.Children)
	if n == 0 {
		return nil
	}

	mainSize := inner.H
	if !vertical {
		mainSize = inner.W
	}
	totalGap := gap * max0(n-1)
	available := mainSize - totalGap

	spacerCount := 0
	fixedTotal := 0
	sizes := make([]int, n)
	for i, child := range el.Children {
		if child.Kind == ElSpacer {
			spacerCount++
			continue
		}
		size := fixedChildSize(child, vertical, inner)
		sizes[i] = size
		fixedTotal += size
	}

	leftover := max0(available - fixedTotal)
	spacerSize := 0
	if spacerCount > 0 {
		spacerSize = leftover / spacerCount
	}

	out := make([]LaidOutElement, 0, n)
	cursor := 0
	if vertical {
		cursor = int(inner.Y)
	} else {
		cursor = int(inner.X)
	}

	for i, child := range el.Children {
		size := sizes[i]
		if child.Kind == ElSpacer {
			size = spacerSize
		}
		var r Rect
		if vertical {
			r = Rect{X: inner.X, Y: int32(cursor), W: inner.W, H: size}
		} else {
			r = Rect{X: int32(cursor), Y: inner.Y, W: size, H: inner.H}
		}
		out = append(out, LaidOutElement{El: child, Rect: r})
		cursor += size + gap
	}
	return out
}

// fixedChildSize reports a non-spacer child's main-axis size: an
// explicit "size" attribute if present, else a sensible per-kind
// default.
func fixedChildSize(el *Element, vertical bool, inner Rect) int {
	if s, err := el.AttrInt("size", -1); err == nil && s >= 0 {
		return s
	}
	switch el.Kind {
	case ElLabel, ElButton, ElTextbox:
		if vertical {
			return 20
		}
		return 80
	case ElVBox, ElHBox, ElPanel:
		if vertical {
			return inner.H / 3
		}
		return inner.W / 3
	}
	return 20
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
