package archive

import (
	"errors"
	"reflect"
	"testing"

	"howett.net/plist"
)

func classDesc(name string) map[string]interface{} {
	return map[string]interface{}{
		"$classname": name,
		"$classes":   []interface{}{name},
	}
}

func keyedArchive(objects ...interface{}) map[string]interface{} {
	return map[string]interface{}{
		"$version":  uint64(100000),
		"$archiver": "NSKeyedArchiver",
		"$objects":  objects,
		"$top":      map[string]interface{}{"root": plist.UID(1)},
	}
}

func flatten(t *testing.T, root map[string]interface{}) map[string]interface{} {
	t.Helper()
	a, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	out, err := a.Flatten()
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	return out
}

func TestFlattenURLBalloon(t *testing.T) {
	root := keyedArchive(
		"$null",
		map[string]interface{}{
			"$class":     plist.UID(5),
			"NS.keys":    []interface{}{plist.UID(2)},
			"NS.objects": []interface{}{plist.UID(3)},
		},
		"URL",
		map[string]interface{}{
			"$class":      plist.UID(6),
			"NS.relative": plist.UID(4),
		},
		"https://example.com/article",
		classDesc("NSDictionary"),
		classDesc("NSURL"),
	)

	got := flatten(t, root)
	want := map[string]interface{}{"URL": "https://example.com/article"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestFlattenGenericObject(t *testing.T) {
	root := keyedArchive(
		"$null",
		map[string]interface{}{
			"$class":  plist.UID(5),
			"title":   plist.UID(2),
			"summary": plist.UID(3),
			"item":    plist.UID(4),
			"version": uint64(1),
		},
		"Some Headline",
		"A short summary",
		"article",
		classDesc("RichLinkMetadata"),
	)

	got := flatten(t, root)
	want := map[string]interface{}{
		"title":   "Some Headline",
		"summary": "A short summary",
		"item":    "article",
		"version": uint64(1),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestFlattenSharedReference(t *testing.T) {
	// The same UID reached through two keys is legal; only a repeat on one
	// chain is a cycle.
	root := keyedArchive(
		"$null",
		map[string]interface{}{
			"$class":     plist.UID(5),
			"NS.keys":    []interface{}{plist.UID(2), plist.UID(3)},
			"NS.objects": []interface{}{plist.UID(4), plist.UID(4)},
		},
		"a",
		"b",
		"shared",
		classDesc("NSDictionary"),
	)

	got := flatten(t, root)
	want := map[string]interface{}{"a": "shared", "b": "shared"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestFlattenLiteralRootIgnored(t *testing.T) {
	got := flatten(t, keyedArchive("$null", "just a string"))
	if len(got) != 0 {
		t.Errorf("Flatten() = %v, want empty map", got)
	}
}

func TestFlattenDeterministic(t *testing.T) {
	root := keyedArchive(
		"$null",
		map[string]interface{}{
			"$class": plist.UID(4),
			"title":  plist.UID(2),
			"artist": plist.UID(3),
			"rank":   uint64(3),
		},
		"Song",
		"Band",
		classDesc("MusicMetadata"),
	)

	first := flatten(t, root)
	second := flatten(t, root)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Flatten() disagree: %v vs %v", first, second)
	}
}

func TestFlattenDictionarySizeMismatch(t *testing.T) {
	root := keyedArchive(
		"$null",
		map[string]interface{}{
			"$class":     plist.UID(4),
			"NS.keys":    []interface{}{plist.UID(2), plist.UID(3)},
			"NS.objects": []interface{}{plist.UID(2)},
		},
		"x",
		"y",
		classDesc("NSDictionary"),
	)

	a, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = a.Flatten()
	var sizeErr *InvalidDictionarySizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("Flatten() error = %v, want InvalidDictionarySizeError", err)
	}
	if sizeErr.Keys != 2 || sizeErr.Objects != 1 {
		t.Errorf("size error = %+v, want Keys=2 Objects=1", sizeErr)
	}
}

func TestFlattenCycle(t *testing.T) {
	root := keyedArchive(
		"$null",
		map[string]interface{}{
			"$class": plist.UID(2),
			"next":   plist.UID(1),
		},
		classDesc("Node"),
	)

	a, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = a.Flatten()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Flatten() error = %v, want CycleError", err)
	}
	if cycleErr.Index != 1 {
		t.Errorf("cycle index = %d, want 1", cycleErr.Index)
	}
}

func TestFlattenIndexOutOfRange(t *testing.T) {
	root := keyedArchive("$null")
	root["$top"] = map[string]interface{}{"root": plist.UID(99)}

	a, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = a.Flatten()
	var idxErr *NoValueAtIndexError
	if !errors.As(err, &idxErr) {
		t.Fatalf("Flatten() error = %v, want NoValueAtIndexError", err)
	}
	if idxErr.Index != 99 {
		t.Errorf("index = %d, want 99", idxErr.Index)
	}
}

func TestFlattenMissingClass(t *testing.T) {
	root := keyedArchive(
		"$null",
		map[string]interface{}{"foo": "bar"},
	)

	a, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = a.Flatten()
	var missErr *MissingKeyError
	if !errors.As(err, &missErr) {
		t.Fatalf("Flatten() error = %v, want MissingKeyError", err)
	}
	if missErr.Key != "$class" {
		t.Errorf("missing key = %q, want %q", missErr.Key, "$class")
	}
}

func TestNewEnvelopeValidation(t *testing.T) {
	tests := []struct {
		name string
		root map[string]interface{}
		key  string
	}{
		{name: "no objects", root: map[string]interface{}{"$top": map[string]interface{}{}}, key: "$objects"},
		{name: "no top", root: map[string]interface{}{"$objects": []interface{}{}}, key: "$top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.root)
			var missErr *MissingKeyError
			if !errors.As(err, &missErr) {
				t.Fatalf("New() error = %v, want MissingKeyError", err)
			}
			if missErr.Key != tt.key {
				t.Errorf("missing key = %q, want %q", missErr.Key, tt.key)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse([]byte("not a plist")); err == nil {
		t.Error("Parse() on garbage bytes succeeded, want error")
	}

	xml := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0"><dict>
	<key>$objects</key><array><string>$null</string><string>hello</string></array>
	<key>$top</key><dict><key>root</key><integer>1</integer></dict>
</dict></plist>`
	a, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	// The envelope is valid but root is a plain integer, not a UID.
	_, err = a.Flatten()
	var typeErr *InvalidTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("Flatten() error = %v, want InvalidTypeError", err)
	}
	if typeErr.Key != "root" {
		t.Errorf("invalid key = %q, want %q", typeErr.Key, "root")
	}
}
