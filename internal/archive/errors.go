package archive

import "fmt"

// MissingKeyError reports a dictionary that lacks a key the layout requires.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("archive: missing key %q", e.Key)
}

// InvalidTypeError reports a key whose value has the wrong shape.
type InvalidTypeError struct {
	Key  string
	Want string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("archive: key %q is not a %s", e.Key, e.Want)
}

// NoValueAtIndexError reports a UID pointing past the end of $objects.
type NoValueAtIndexError struct {
	Index uint64
}

func (e *NoValueAtIndexError) Error() string {
	return fmt.Sprintf("archive: no object at index %d", e.Index)
}

// InvalidTypeAtIndexError reports an object whose shape does not match what
// the reference that reached it requires.
type InvalidTypeAtIndexError struct {
	Index uint64
	Want  string
}

func (e *InvalidTypeAtIndexError) Error() string {
	return fmt.Sprintf("archive: object at index %d is not a %s", e.Index, e.Want)
}

// InvalidDictionarySizeError reports parallel NS.keys/NS.objects arrays of
// unequal length.
type InvalidDictionarySizeError struct {
	Keys    int
	Objects int
}

func (e *InvalidDictionarySizeError) Error() string {
	return fmt.Sprintf("archive: dictionary has %d keys but %d objects", e.Keys, e.Objects)
}

// CycleError reports a UID reached twice along one reference chain. Producers
// are not known to emit cycles, but a malformed archive must fail instead of
// looping forever.
type CycleError struct {
	Index uint64
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("archive: reference cycle through index %d", e.Index)
}
