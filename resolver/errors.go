package resolver

import (
	"errors"
	"fmt"
)

var ErrUnclassified = errors.New("configuration entry is neither plain nor secret")

// ClassificationError reports an entry that matched the namespace and prefix filters
// but that the store returned no value for.
type ClassificationError struct {
	Key string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s: [%s]", ErrUnclassified.Error(), e.Key)
}

func (e *ClassificationError) Unwrap() error {
	return ErrUnclassified
}
