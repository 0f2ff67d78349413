package copyutil

import (
	"github.com/huandu/go-clone"
)

// DeepCopy returns a deep copy of src.
func DeepCopy[T any](src T) T {
	return clone.Clone(src).(T)
}

// CopyCircular deep copies values that may contain reference cycles.
func CopyCircular[T any](src T) T {
	return clone.Slowly(src).(T)
}
