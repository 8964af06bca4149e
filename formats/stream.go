package formats

import (
	"iter"
	"slices"
)

// Rower is implemented by row items: values that render as one table row.
// A Rower may also implement [Headed], [Titled], [Footered], [Aligned] and
// [Captioned]; those are read from the first item only.
type Rower interface {
	Row() []string
}

// FromRows collects row items into a [Table] payload.
func FromRows[T Rower](items ...T) *Table {
	return FromSeq(slices.Values(items))
}

// FromSeq collects row items from an iterator into a [Table] payload.
// The table is complete when seq is exhausted.
func FromSeq[T Rower](seq iter.Seq[T]) *Table {
	t := &Table{}
	first := true
	for item := range seq {
		if first {
			first = false
			describe(t, item)
		}
		t.Records = append(t.Records, slices.Clone(item.Row()))
	}
	return t
}

// FromChan collects row items from a channel until it is closed.
// It is a thin wrapper around [FromSeq].
func FromChan[T Rower](ch <-chan T) *Table {
	return FromSeq(chanToIter(ch))
}

func chanToIter[T any](ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range ch {
			if !yield(item) {
				return
			}
		}
	}
}

func describe(t *Table, item any) {
	if h, ok := item.(Headed); ok {
		t.Columns = slices.Clone(h.Header())
	}
	if ti, ok := item.(Titled); ok {
		t.Heading = ti.Title()
	}
	if f, ok := item.(Footered); ok {
		t.Totals = slices.Clone(f.Footer())
	}
	if a, ok := item.(Aligned); ok {
		t.Aligns = slices.Clone(a.Alignments())
	}
	if c, ok := item.(Captioned); ok {
		t.Note = c.Caption()
	}
}
