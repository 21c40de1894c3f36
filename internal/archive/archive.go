// Package archive flattens NSKeyedArchiver object graphs into string-keyed
// maps. Rich message payloads (link previews, app balloons, edit history)
// are stored as keyed archives: a $objects array of heterogeneous values
// cross-referenced by integer UIDs, with $top naming the root. This package
// supports only the layouts Messages is known to produce; anything else is a
// structured decode error.
package archive

import (
	"sort"

	"howett.net/plist"
)

// Archive is a parsed keyed archive ready to be flattened.
type Archive struct {
	objects []interface{}
	top     map[string]interface{}
}

// Parse unmarshals a binary or XML plist and validates the keyed-archive
// envelope.
func Parse(data []byte) (*Archive, error) {
	var root interface{}
	if _, err := plist.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	dict, ok := root.(map[string]interface{})
	if !ok {
		return nil, &InvalidTypeError{Key: "$archive", Want: "dictionary"}
	}
	return New(dict)
}

// New wraps an already-unmarshaled plist root.
func New(root map[string]interface{}) (*Archive, error) {
	rawObjects, ok := root["$objects"]
	if !ok {
		return nil, &MissingKeyError{Key: "$objects"}
	}
	objects, ok := rawObjects.([]interface{})
	if !ok {
		return nil, &InvalidTypeError{Key: "$objects", Want: "array"}
	}
	rawTop, ok := root["$top"]
	if !ok {
		return nil, &MissingKeyError{Key: "$top"}
	}
	top, ok := rawTop.(map[string]interface{})
	if !ok {
		return nil, &InvalidTypeError{Key: "$top", Want: "dictionary"}
	}
	return &Archive{objects: objects, top: top}, nil
}

// Decode parses data and flattens it in one step.
func Decode(data []byte) (map[string]interface{}, error) {
	a, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return a.Flatten()
}

// Flatten walks the object graph from the root UID and returns a flat map
// from archive field name to scalar value. Values are copied out of the
// parsed tree, so the map outlives the Archive. The walk tracks the UIDs on
// the current reference chain and fails with a CycleError if one repeats.
func (a *Archive) Flatten() (map[string]interface{}, error) {
	rawRoot, ok := a.top["root"]
	if !ok {
		return nil, &MissingKeyError{Key: "root"}
	}
	root, ok := rawRoot.(plist.UID)
	if !ok {
		return nil, &InvalidTypeError{Key: "root", Want: "uid"}
	}

	w := &walker{archive: a, out: make(map[string]interface{}), onPath: make(map[uint64]bool)}
	if err := w.walk(uint64(root), "", false); err != nil {
		return nil, err
	}
	return w.out, nil
}

func (a *Archive) object(index uint64) (interface{}, error) {
	if index >= uint64(len(a.objects)) {
		return nil, &NoValueAtIndexError{Index: index}
	}
	return a.objects[index], nil
}

// className resolves an object's $class reference to its $classname string.
func (a *Archive) className(obj map[string]interface{}) (string, error) {
	rawClass, ok := obj["$class"]
	if !ok {
		return "", &MissingKeyError{Key: "$class"}
	}
	uid, ok := rawClass.(plist.UID)
	if !ok {
		return "", &InvalidTypeError{Key: "$class", Want: "uid"}
	}
	resolved, err := a.object(uint64(uid))
	if err != nil {
		return "", err
	}
	desc, ok := resolved.(map[string]interface{})
	if !ok {
		return "", &InvalidTypeAtIndexError{Index: uint64(uid), Want: "dictionary"}
	}
	rawName, ok := desc["$classname"]
	if !ok {
		return "", &MissingKeyError{Key: "$classname"}
	}
	name, ok := rawName.(string)
	if !ok {
		return "", &InvalidTypeError{Key: "$classname", Want: "string"}
	}
	return name, nil
}

type walker struct {
	archive *Archive
	out     map[string]interface{}
	onPath  map[uint64]bool
}

func (w *walker) walk(index uint64, key string, hasKey bool) error {
	if w.onPath[index] {
		return &CycleError{Index: index}
	}
	w.onPath[index] = true
	defer delete(w.onPath, index)

	obj, err := w.archive.object(index)
	if err != nil {
		return err
	}

	dict, ok := obj.(map[string]interface{})
	if !ok {
		// A literal is only reachable from the flat view under a key.
		if hasKey {
			w.out[key] = obj
		}
		return nil
	}

	class, err := w.archive.className(dict)
	if err != nil {
		return err
	}

	switch class {
	case "NSDictionary", "NSMutableDictionary":
		return w.walkDictionary(dict)
	case "NSURL", "NSMutableURL":
		return w.walkURL(dict, key, hasKey)
	default:
		return w.walkGeneric(dict)
	}
}

// walkDictionary handles the parallel NS.keys/NS.objects layout: each key UID
// resolves to a string, each object UID is walked under that key.
func (w *walker) walkDictionary(dict map[string]interface{}) error {
	keys, err := uidSlice(dict, "NS.keys")
	if err != nil {
		return err
	}
	objects, err := uidSlice(dict, "NS.objects")
	if err != nil {
		return err
	}
	if len(keys) != len(objects) {
		return &InvalidDictionarySizeError{Keys: len(keys), Objects: len(objects)}
	}

	for i, keyUID := range keys {
		raw, err := w.archive.object(keyUID)
		if err != nil {
			return err
		}
		name, ok := raw.(string)
		if !ok {
			return &InvalidTypeAtIndexError{Index: keyUID, Want: "string"}
		}
		if err := w.walk(objects[i], name, true); err != nil {
			return err
		}
	}
	return nil
}

// walkURL binds the NS.relative literal under the key that reached the URL
// object.
func (w *walker) walkURL(dict map[string]interface{}, key string, hasKey bool) error {
	rawRel, ok := dict["NS.relative"]
	if !ok {
		return &MissingKeyError{Key: "NS.relative"}
	}
	uid, ok := rawRel.(plist.UID)
	if !ok {
		return &InvalidTypeError{Key: "NS.relative", Want: "uid"}
	}
	resolved, err := w.archive.object(uint64(uid))
	if err != nil {
		return err
	}
	s, ok := resolved.(string)
	if !ok {
		return &InvalidTypeAtIndexError{Index: uint64(uid), Want: "string"}
	}
	if hasKey {
		w.out[key] = s
	}
	return nil
}

// walkGeneric binds every field except $class: UID fields recurse under the
// field name, literal fields bind directly. Fields are visited in sorted
// order so repeated flattens of one archive agree.
func (w *walker) walkGeneric(dict map[string]interface{}) error {
	fields := make([]string, 0, len(dict))
	for field := range dict {
		if field == "$class" {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if uid, ok := dict[field].(plist.UID); ok {
			if err := w.walk(uint64(uid), field, true); err != nil {
				return err
			}
			continue
		}
		w.out[field] = dict[field]
	}
	return nil
}

func uidSlice(dict map[string]interface{}, key string) ([]uint64, error) {
	raw, ok := dict[key]
	if !ok {
		return nil, &MissingKeyError{Key: key}
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, &InvalidTypeError{Key: key, Want: "array"}
	}
	uids := make([]uint64, len(arr))
	for i, v := range arr {
		uid, ok := v.(plist.UID)
		if !ok {
			return nil, &InvalidTypeError{Key: key, Want: "array of uids"}
		}
		uids[i] = uint64(uid)
	}
	return uids, nil
}
