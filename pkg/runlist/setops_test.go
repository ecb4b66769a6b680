package runlist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// refMember is the model the set operations are checked against: raw
// interval membership XORed with the polarity flag.
func refMember(spans []span, inverted bool, key uint64) bool {
	in := false
	for _, s := range spans {
		if key >= s[0] && key < s[1] {
			in = true
		}
	}
	return in != inverted
}

const probeMax = 25

func TestAddSet(t *testing.T) {
	cases := map[string]struct {
		a            []span
		aInverted    bool
		b            []span
		bInverted    bool
		expectedRuns []span
		wantInverted bool
	}{
		"NormalNormal": {
			a: []span{{0, 5}}, b: []span{{3, 8}},
			expectedRuns: []span{{0, 8}},
		},
		"NormalNormalDisjoint": {
			a: []span{{0, 2}}, b: []span{{4, 6}, {8, 10}},
			expectedRuns: []span{{0, 2}, {4, 6}, {8, 10}},
		},
		"NormalInverted": {
			// [0,5) + all-but-[3,8) = all-but-[5,8)
			a: []span{{0, 5}}, b: []span{{3, 8}}, bInverted: true,
			expectedRuns: []span{{5, 8}}, wantInverted: true,
		},
		"InvertedNormal": {
			// all-but-[0,5) + [3,8) = all-but-[0,3)
			a: []span{{0, 5}}, aInverted: true, b: []span{{3, 8}},
			expectedRuns: []span{{0, 3}}, wantInverted: true,
		},
		"InvertedInverted": {
			// all-but-[0,5) + all-but-[3,8) = all-but-[3,5)
			a: []span{{0, 5}}, aInverted: true, b: []span{{3, 8}}, bInverted: true,
			expectedRuns: []span{{3, 5}}, wantInverted: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a := newUint64(t, tc.a...)
			if tc.aInverted {
				a.Invert()
			}
			b := newUint64(t, tc.b...)
			if tc.bInverted {
				b.Invert()
			}
			assert.NoError(t, a.AddSet(b))
			checkInvariant(t, a)

			assert.Equal(t, tc.wantInverted, a.Inverted())
			if diff := cmp.Diff(tc.expectedRuns, storedRuns(a)); diff != "" {
				t.Errorf("-want, +got:\n%s", diff)
			}
			for key := uint64(0); key < probeMax; key++ {
				want := refMember(tc.a, tc.aInverted, key) || refMember(tc.b, tc.bInverted, key)
				assert.Equal(t, want, a.Has(key), "key %d", key)
			}
			// the operand is never mutated
			if diff := cmp.Diff(tc.b, storedRuns(b)); diff != "" {
				t.Errorf("operand changed: -want, +got:\n%s", diff)
			}
		})
	}
}

func TestRemoveSet(t *testing.T) {
	cases := map[string]struct {
		a            []span
		aInverted    bool
		b            []span
		bInverted    bool
		expectedRuns []span
		wantInverted bool
	}{
		"NormalNormal": {
			a: []span{{0, 8}}, b: []span{{3, 5}},
			expectedRuns: []span{{0, 3}, {5, 8}},
		},
		"NormalInverted": {
			// [0,8) minus all-but-[3,5) = [3,5)
			a: []span{{0, 8}}, b: []span{{3, 5}}, bInverted: true,
			expectedRuns: []span{{3, 5}},
		},
		"InvertedNormal": {
			// all-but-[0,3) minus [5,8) = all-but-([0,3) and [5,8))
			a: []span{{0, 3}}, aInverted: true, b: []span{{5, 8}},
			expectedRuns: []span{{0, 3}, {5, 8}}, wantInverted: true,
		},
		"InvertedInverted": {
			// all-but-[0,5) minus all-but-[3,8) = [5,8)
			a: []span{{0, 5}}, aInverted: true, b: []span{{3, 8}}, bInverted: true,
			expectedRuns: []span{{5, 8}},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a := newUint64(t, tc.a...)
			if tc.aInverted {
				a.Invert()
			}
			b := newUint64(t, tc.b...)
			if tc.bInverted {
				b.Invert()
			}
			assert.NoError(t, a.RemoveSet(b))
			checkInvariant(t, a)

			assert.Equal(t, tc.wantInverted, a.Inverted())
			if diff := cmp.Diff(tc.expectedRuns, storedRuns(a)); diff != "" {
				t.Errorf("-want, +got:\n%s", diff)
			}
			for key := uint64(0); key < probeMax; key++ {
				want := refMember(tc.a, tc.aInverted, key) && !refMember(tc.b, tc.bInverted, key)
				assert.Equal(t, want, a.Has(key), "key %d", key)
			}
		})
	}
}

func TestSetOpsSelf(t *testing.T) {
	a := newUint64(t, span{0, 3}, span{5, 8})
	assert.NoError(t, a.AddSet(a))
	checkInvariant(t, a)
	if diff := cmp.Diff([]span{{0, 3}, {5, 8}}, storedRuns(a)); diff != "" {
		t.Errorf("-want, +got:\n%s", diff)
	}

	assert.NoError(t, a.RemoveSet(a))
	checkInvariant(t, a)
	assert.True(t, a.IsEmpty())
}

func TestIntersect(t *testing.T) {
	cases := map[string]struct {
		a        []span
		b        []span
		expected []span
	}{
		"Disjoint": {
			a: []span{{0, 3}}, b: []span{{5, 8}},
			expected: nil,
		},
		"Touching": {
			a: []span{{0, 5}}, b: []span{{5, 8}},
			expected: nil,
		},
		"Partial": {
			a: []span{{0, 5}}, b: []span{{3, 8}},
			expected: []span{{3, 5}},
		},
		"SeveralSegments": {
			a: []span{{0, 10}, {20, 30}}, b: []span{{5, 25}},
			expected: []span{{5, 10}, {20, 25}},
		},
		"GapPreserved": {
			a: []span{{0, 4}, {6, 10}}, b: []span{{0, 10}},
			expected: []span{{0, 4}, {6, 10}},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a := newUint64(t, tc.a...)
			b := newUint64(t, tc.b...)
			a.Invert()
			b.Invert()
			// ¬A + ¬B stores A ∩ B
			assert.NoError(t, a.AddSet(b))
			checkInvariant(t, a)
			var want []span
			if tc.expected != nil {
				want = tc.expected
			}
			got := storedRuns(a)
			if len(got) == 0 {
				got = nil
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("-want, +got:\n%s", diff)
			}
		})
	}
}
