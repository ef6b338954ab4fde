package gopickle

import "testing"

// FuzzLoad seeds from the known-good scenario corpus plus a handful of
// truncated/malformed variants, and asserts only that Load never panics:
// every malformed input must surface as a typed error, never a crash.
func FuzzLoad(f *testing.F) {
	seeds := []string{
		"80 04 4B 01 2E",
		"80 04 95 0D 00 00 00 00 00 00 00 8C 09 74 65 73 74 20 F0 9F 98 BA 94 2E",
		"80 04 95 09 00 00 00 00 00 00 00 8F 94 28 4B 01 4B 02 90 2E",
		"80 04 95 0D 00 00 00 00 00 00 00 5D 94 28 4B 01 4B 02 65 68 00 86 94 2E",
		"28 6C 70 30 0A 49 31 0A 61 49 32 0A 61 2E",
		"50 61 0A 2E",
	}
	for _, s := range seeds {
		f.Add(hexBytes(s))
	}
	// Truncated variants of the same seeds are good at surfacing
	// off-by-one errors in cursor bounds checks.
	for _, s := range seeds {
		b := hexBytes(s)
		if len(b) > 1 {
			f.Add(b[:len(b)-1])
		}
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Load panicked on input %x: %v", data, r)
			}
		}()
		_, _, _ = Load(data, nil)
	})
}
