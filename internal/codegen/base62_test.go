package codegen

import (
	"errors"
	"strings"
	"testing"
)

func TestMaxCodes_Is62Pow7(t *testing.T) {
	want := int64(1)
	for i := 0; i < CodeLength; i++ {
		want *= int64(len(Alphabet))
	}
	if MaxCodes != want {
		t.Fatalf("MaxCodes = %d; want %d", MaxCodes, want)
	}
}

func TestEncode_KnownValues(t *testing.T) {
	cases := map[int64]string{
		0:            "0000000",
		1:            "0000001",
		9:            "0000009",
		10:           "000000A",
		35:           "000000Z",
		36:           "000000a",
		61:           "000000z",
		62:           "0000010",
		3843:         "00000zz",
		MaxCodes - 1: "zzzzzzz",
	}
	for in, want := range cases {
		got, err := Encode(in)
		if err != nil {
			t.Fatalf("Encode(%d) error: %v", in, err)
		}
		if got != want {
			t.Errorf("Encode(%d) = %q; want %q", in, got, want)
		}
	}
}

func TestEncode_RejectsOutOfRange(t *testing.T) {
	for _, n := range []int64{-1, MaxCodes, MaxCodes + 1} {
		if _, err := Encode(n); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Encode(%d) err = %v; want ErrOutOfRange", n, err)
		}
	}
}

func TestMustEncode_PanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustEncode should panic for MaxCodes")
		}
	}()
	_ = MustEncode(MaxCodes)
}

func TestEncode_FixedWidthAlphabetAndRoundTrip(t *testing.T) {
	// dense low range plus a sparse walk across the whole domain
	var inputs []int64
	for n := int64(0); n < 20_000; n++ {
		inputs = append(inputs, n)
	}
	for n := int64(0); n < MaxCodes; n += MaxCodes / 997 {
		inputs = append(inputs, n)
	}
	inputs = append(inputs, MaxCodes-1)

	for _, n := range inputs {
		s, err := Encode(n)
		if err != nil {
			t.Fatalf("Encode(%d): %v", n, err)
		}
		if len(s) != CodeLength {
			t.Fatalf("len(Encode(%d)) = %d", n, len(s))
		}
		for i := 0; i < len(s); i++ {
			if !strings.ContainsRune(Alphabet, rune(s[i])) {
				t.Fatalf("Encode(%d) = %q has symbol outside alphabet", n, s)
			}
		}
		back, err := Decode(s)
		if err != nil {
			t.Fatalf("Decode(%q): %v", s, err)
		}
		if back != n {
			t.Fatalf("Decode(Encode(%d)) = %d", n, back)
		}
	}
}

func TestEncode_Injective(t *testing.T) {
	seen := make(map[string]int64, 200_000)
	check := func(n int64) {
		s := MustEncode(n)
		if prev, dup := seen[s]; dup {
			t.Fatalf("Encode(%d) == Encode(%d) == %q", n, prev, s)
		}
		seen[s] = n
	}
	for n := int64(0); n < 100_000; n++ {
		check(n)
	}
	for n := MaxCodes - 100_000; n < MaxCodes; n++ {
		check(n)
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, in := range []string{"", "000000", "00000000", "000000-", "abc def"} {
		if _, err := Decode(in); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("Decode(%q) err = %v; want ErrInvalidCode", in, err)
		}
	}
}
