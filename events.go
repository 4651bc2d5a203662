package reportflow

// Signal is a synchronous, typed notification. Handlers run in
// registration order on the goroutine that fires the signal.
//
// Handlers may change converter state; keeping that sound is up to the
// subscriber.
type Signal[T any] struct {
	handlers []func(T)
}

// Subscribe registers fn for every future emission.
func (s *Signal[T]) Subscribe(fn func(T)) {
	if fn == nil {
		return
	}
	s.handlers = append(s.handlers, fn)
}

// Len returns the number of subscribers.
func (s *Signal[T]) Len() int { return len(s.handlers) }

func (s *Signal[T]) emit(v T) {
	for _, fn := range s.handlers {
		fn(v)
	}
}

// PageFullEvent carries the elements of a page being flushed. Items is a
// snapshot owned by the subscriber.
type PageFullEvent struct {
	Page  *Page
	Items []ExportElement
}

// SectionRenderEvent fires before a row of Section is laid out.
type SectionRenderEvent struct {
	Section    *Section
	PageNumber int
	CurrentRow int
}

// GroupHeaderEvent fires before a group header is laid out.
type GroupHeaderEvent struct {
	Row *GroupedRow
}

// GroupFooterEvent fires before a group footer is laid out.
type GroupFooterEvent struct {
	Footer *GroupFooter
}

// RowRenderEvent fires before a data row is laid out.
type RowRenderEvent struct {
	Row    *Row
	Record Record
}
