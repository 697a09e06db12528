package leak

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
)

// excludedFuncs holds fully qualified function names elided from rendered
// access trails. Copy-on-write; entries are never removed.
var excludedFuncs atomic.Pointer[[]string]

// AddExclusions registers methods of owner whose stack frames should not
// appear in rendered access trails, e.g. the hot read/write methods of a
// buffer wrapper that would otherwise dominate every trail. Method names are
// validated against owner via reflection; only exported methods can be
// validated and registered. An unknown method name is an error naming the
// missing set.
func AddExclusions(owner any, methods ...string) error {
	t := reflect.TypeOf(owner)
	if t == nil {
		return fmt.Errorf("add exclusions: %w", ErrNilOwner)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	// The pointer method set contains both value and pointer receivers.
	pt := reflect.PointerTo(t)
	var missing []string
	for _, m := range methods {
		if _, ok := pt.MethodByName(m); !ok {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("add exclusions: can't find '%s' in %s",
			strings.Join(missing, ", "), t.String())
	}

	// A frame's function name spells the receiver either way depending on the
	// method set it was called through, so register both.
	prefix := t.PkgPath() + "." + t.Name()
	ptrPrefix := t.PkgPath() + ".(*" + t.Name() + ")"
	qualified := make([]string, 0, 2*len(methods))
	for _, m := range methods {
		qualified = append(qualified, prefix+"."+m, ptrPrefix+"."+m)
	}

	for {
		old := excludedFuncs.Load()
		merged := make([]string, 0, len(qualified))
		if old != nil {
			merged = append(merged, *old...)
		}
		merged = append(merged, qualified...)
		if excludedFuncs.CompareAndSwap(old, &merged) {
			return nil
		}
	}
}

// excludedFrame reports whether the fully qualified function name fn was
// registered via AddExclusions.
func excludedFrame(fn string) bool {
	fns := excludedFuncs.Load()
	if fns == nil {
		return false
	}
	for _, ex := range *fns {
		if ex == fn {
			return true
		}
	}
	return false
}

// resetExclusionsForTesting empties the registry.
func resetExclusionsForTesting() {
	excludedFuncs.Store(nil)
}
