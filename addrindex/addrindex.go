// Package addrindex builds an address-indexed lookup over a set of address
// ranges in bounded, predictable memory: the construction is the five-pass
// algorithm from the reference implementation's CreateSpanInfoList, kept
// deliberately free of any dependency on package database so that database
// can hold an Index without an import cycle.
package addrindex

import "sort"

// SpanInput is the minimal shape addrindex needs from a caller's span
// records: an opaque handle (the caller's own id) plus the inclusive
// address range it covers.
type SpanInput struct {
	Handle uint32
	Start  uint64
	End    uint64 // inclusive
}

// entry is one (address, handles-covering-that-address) row in the built
// index. There is exactly one entry per address covered by at least one
// span in the union of every span's range, not one entry per distinct
// start address.
type entry struct {
	addr    uint64
	handles []uint32
}

// Index answers "which spans cover address a" by binary-searching a dense
// table with one row per unique address any span covers. It is built once
// and read many times; there is no mutation API.
type Index struct {
	entries []entry
}

// Build constructs an Index over spans. The algorithm runs in five bounded
// passes, matching the reference CreateSpanInfoList: (1) walk spans sorted
// by start address, tracking the highest end address seen so far (E), to
// count how many addresses across the whole span set are newly covered by
// each span — this is the total number of unique addresses, not the number
// of distinct starts; (2) allocate the flat entries table at that exact
// size; (3) walk the same way again, stamping each entry's address; (4+5)
// for each span, locate its covered entries by binary search and append its
// handle to every one of them.
func Build(spans []SpanInput) Index {
	ordered := make([]SpanInput, len(spans))
	copy(ordered, spans)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].Handle < ordered[j].Handle
	})

	if len(ordered) == 0 {
		return Index{}
	}

	// Pass 1: count unique addresses via a running-max walk. A span
	// contributes only the addresses above the highest end seen so far
	// (or its whole range, if it starts past that high-water mark).
	total := uint64(ordered[0].End-ordered[0].Start) + 1
	end := ordered[0].End
	for i := 1; i < len(ordered); i++ {
		s := ordered[i]
		switch {
		case s.Start > end:
			total += (s.End - s.Start) + 1
			end = s.End
		case s.End > end:
			total += s.End - end
			end = s.End
		}
	}

	// Pass 2: allocate the flat entries table at the exact unique count.
	entries := make([]entry, total)

	// Pass 3: stamp each entry's address, using the same running-max walk
	// to find which addresses in each span are newly covered.
	idx := 0
	for addr := ordered[0].Start; addr <= ordered[0].End; addr++ {
		entries[idx].addr = addr
		idx++
	}
	end = ordered[0].End
	for i := 1; i < len(ordered); i++ {
		s := ordered[i]
		var from uint64
		switch {
		case s.Start > end:
			from = s.Start
			end = s.End
		case s.End > end:
			from = end + 1
			end = s.End
		default:
			continue
		}
		for addr := from; addr <= s.End; addr++ {
			entries[idx].addr = addr
			idx++
		}
	}

	// Pass 4+5: for each span, append its handle to every entry its range
	// covers, found by binary search since entries is addr-sorted.
	for _, s := range ordered {
		lo := sort.Search(len(entries), func(i int) bool { return entries[i].addr >= s.Start })
		for i := lo; i < len(entries) && entries[i].addr <= s.End; i++ {
			entries[i].handles = append(entries[i].handles, s.Handle)
		}
	}

	return Index{entries: entries}
}

// Lookup returns every span handle whose range covers addr, in ascending
// start-address order (ties broken by handle), or nil if no span covers
// addr. This is a single binary search: every address any span covers has
// its own entry, so there is no fallback scan.
func (ix Index) Lookup(addr uint64) []uint32 {
	i := sort.Search(len(ix.entries), func(i int) bool { return ix.entries[i].addr >= addr })
	if i >= len(ix.entries) || ix.entries[i].addr != addr {
		return nil
	}
	if len(ix.entries[i].handles) == 0 {
		return nil
	}
	out := make([]uint32, len(ix.entries[i].handles))
	copy(out, ix.entries[i].handles)
	return out
}

// Len returns the number of unique addresses indexed.
func (ix Index) Len() int {
	return len(ix.entries)
}
