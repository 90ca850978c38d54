package task

import "strconv"

// TaskID identifies a persisted task. It is assigned by storage when a draft
// is first saved and never reused after deletion.
type TaskID struct {
	value uint64
}

// TaskIDFrom wraps a raw identifier.
func TaskIDFrom(id uint64) TaskID {
	return TaskID{value: id}
}

// Uint64 returns the wrapped identifier.
func (id TaskID) Uint64() uint64 {
	return id.value
}

func (id TaskID) String() string {
	return strconv.FormatUint(id.value, 10)
}
