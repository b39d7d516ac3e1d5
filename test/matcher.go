package test

import (
	"fmt"

	"go.uber.org/mock/gomock"
)

type funcMatcher[T any] struct {
	match func(val T) bool
}

func (f funcMatcher[T]) Matches(val interface{}) bool {
	v, ok := val.(T)
	return ok && f.match(v)
}

func (f funcMatcher[T]) String() string {
	var zero T
	return fmt.Sprintf("is a %T accepted by the match function", zero)
}

// Match returns a gomock matcher that accepts arguments of type T for which m returns true.
func Match[T any](m func(v T) bool) gomock.Matcher {
	return funcMatcher[T]{match: m}
}
