package generator

import (
	"testing"

	"github.com/relc-lang/relc/testutil"
)

// TestGoldenModules compiles the testdata fixtures and compares the emitted
// module text byte for byte. Regenerate with UPDATE_GOLDENS=true go test.
func TestGoldenModules(t *testing.T) {
	for _, name := range []string{"user", "nested"} {
		t.Run(name, func(t *testing.T) {
			src := testutil.LoadFixture(t, "emit", name+".rel")
			got := generate(t, src)
			testutil.CompareText(t, "emit", name, got)
		})
	}
}
