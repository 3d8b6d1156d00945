package syntaxmap

import (
	"sort"

	"go.gopad.dev/go-syntax-map/buffer"
)

// ChangedRegion records a byte range the reparse driver knows needs
// reparsing at some depth, discovered either because an edit landed
// inside it or because the layer that used to occupy it was dropped.
// Layers nested inside a ChangedRegion at a shallower depth are always
// treated as stale, even before the region itself has been visited.
type ChangedRegion struct {
	Depth int
	Range AnchorRange
}

// changedRegionCompare orders ChangedRegions ascending by depth, then by ascending
// range start, then by descending range end (the widest region at a
// given start sorts first).
func changedRegionCompare(a, b ChangedRegion, cmp Comparator) int {
	if a.Depth != b.Depth {
		if a.Depth < b.Depth {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Range.Start, b.Range.Start); c != 0 {
		return c
	}
	return cmp.Compare(b.Range.End, a.Range.End)
}

// insertChangedRegion inserts region into the sorted slice regions,
// unless a region that compares equal to it is already present.
func insertChangedRegion(regions []ChangedRegion, region ChangedRegion, cmp Comparator) []ChangedRegion {
	i := sort.Search(len(regions), func(i int) bool {
		return changedRegionCompare(regions[i], region, cmp) >= 0
	})
	if i < len(regions) && changedRegionCompare(regions[i], region, cmp) == 0 {
		return regions
	}
	regions = append(regions, ChangedRegion{})
	copy(regions[i+1:], regions[i:])
	regions[i] = region
	return regions
}

// retainChangedRegions keeps only the regions that can still matter once
// the driver has finished processing everything at depths up to and
// including currentDepth, starting at rangeStart: regions strictly
// deeper always remain relevant, and regions at the same depth remain
// relevant only if they extend past where processing has reached.
func retainChangedRegions(regions []ChangedRegion, currentDepth int, rangeStart buffer.Anchor, cmp Comparator) []ChangedRegion {
	out := regions[:0]
	for _, r := range regions {
		if r.Depth > currentDepth || (r.Depth == currentDepth && cmp.Compare(r.Range.End, rangeStart) > 0) {
			out = append(out, r)
		}
	}
	return out
}

// layerIsChanged reports whether any ChangedRegion overlaps layer's
// range, meaning layer can't be trusted and must be reparsed rather than
// carried over as-is.
func layerIsChanged(layer *SyntaxLayer, regions []ChangedRegion, cmp Comparator) bool {
	for _, region := range regions {
		isBeforeLayer := cmp.Compare(region.Range.End, layer.Range.Start) <= 0
		isAfterLayer := cmp.Compare(region.Range.Start, layer.Range.End) >= 0
		if !isBeforeLayer && !isAfterLayer {
			return true
		}
	}
	return false
}
