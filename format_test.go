package quill

import (
	"math"
	"math/big"
	"strings"
	"testing"
)

func TestFormatBasic(t *testing.T) {
	cases := []struct {
		format string
		values []any
		want   string
	}{
		{"hello", nil, "hello"},
		{"{} and {} and {}", []any{42, "abc1", 1.5}, "42 and abc1 and 1.5"},
		{"{0} {1} {0}", []any{"a", "b"}, "a b a"},
		{"{{}}", nil, "{}"},
		{"{{{}}}", []any{1}, "{1}"},
		{"literal {} tail", []any{true}, "literal true tail"},
		{"{:}", []any{7}, "7"},
	}
	for _, tc := range cases {
		got, err := Format(tc.format, tc.values...)
		if err != nil {
			t.Fatalf("Format(%q): %v", tc.format, err)
		}
		if got != tc.want {
			t.Fatalf("Format(%q) = %q, want %q", tc.format, got, tc.want)
		}
	}
}

func TestFormatNamed(t *testing.T) {
	got, err := Format("{first} then {second}", Named("second", 2), Named("first", 1))
	if err != nil {
		t.Fatal(err)
	}
	if got != "1 then 2" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatErrors(t *testing.T) {
	cases := []struct {
		name   string
		format string
		values []any
		substr string
	}{
		{"unmatched close", "a } b", nil, "unmatched '}'"},
		{"unterminated field", "{", []any{1}, "missing '}'"},
		{"auto then manual", "{} {0}", []any{1}, "manual"},
		{"manual then auto", "{0} {}", []any{1}, "automatic"},
		{"index out of range", "{1}", []any{1}, "out of range"},
		{"auto out of range", "{} {}", []any{1}, "out of range"},
		{"name not found", "{missing}", []any{Named("a", 1)}, "not found"},
		{"bad verb", "{:z}", []any{42}, "invalid verb"},
		{"int precision", "{:.2}", []any{42}, "precision"},
		{"bool verb", "{:d}", []any{true}, "invalid verb"},
		{"missing precision", "{:.}", []any{"s"}, "missing precision"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Format(tc.format, tc.values...)
			if err == nil {
				t.Fatalf("Format(%q) should fail", tc.format)
			}
			if !strings.Contains(err.Error(), tc.substr) {
				t.Fatalf("error %q does not mention %q", err, tc.substr)
			}
		})
	}
}

func TestFormatSpec(t *testing.T) {
	cases := []struct {
		format string
		value  any
		want   string
	}{
		{"{:5}", 42, "   42"},
		{"{:<5}", 42, "42   "},
		{"{:^6}", 42, "  42  "},
		{"{:5}", "ab", "ab   "},
		{"{:>5}", "ab", "   ab"},
		{"{:^5}", "ab", " ab  "},
		{"{:*>6}", "ab", "****ab"},
		{"{:-^6}", "ab", "--ab--"},
		{"{:.3}", "hello", "hel"},
		{"{:8.3}", "hello", "hel     "},
		{"{:x}", 255, "ff"},
		{"{:X}", 255, "FF"},
		{"{:b}", 5, "101"},
		{"{:o}", 8, "10"},
		{"{:d}", -42, "-42"},
		{"{:.2f}", 1.5, "1.50"},
		{"{:f}", 1.5, "1.500000"},
		{"{:e}", 1.5, "1.500000e+00"},
		{"{:.1}", 2.345, "2.3"},
		{"{:g}", 100000.0, "100000"},
		{"{}", math.NaN(), "nan"},
		{"{}", math.Inf(1), "inf"},
		{"{}", math.Inf(-1), "-inf"},
		{"{}", Char('A'), "A"},
		{"{:d}", Char('A'), "65"},
		{"{:>3}", Char('A'), "  A"},
		{"{}", uintptr(0xbeef), "0xbeef"},
		{"{}", nil, "0x0"},
		{"{}", uint64(math.MaxUint64), "18446744073709551615"},
	}
	for _, tc := range cases {
		got, err := Format(tc.format, tc.value)
		if err != nil {
			t.Fatalf("Format(%q, %v): %v", tc.format, tc.value, err)
		}
		if got != tc.want {
			t.Fatalf("Format(%q, %v) = %q, want %q", tc.format, tc.value, got, tc.want)
		}
	}
}

// Width counts display cells, so East Asian wide runes pad as two.
func TestFormatDisplayWidth(t *testing.T) {
	got, err := Format("{:6}", "日本")
	if err != nil {
		t.Fatal(err)
	}
	if got != "日本  " {
		t.Fatalf("wide padding = %q", got)
	}
	got, err = Format("{:.3}", "日本")
	if err != nil {
		t.Fatal(err)
	}
	if got != "日" {
		t.Fatalf("wide truncation = %q", got)
	}
}

func TestAppendFormat(t *testing.T) {
	dst := []byte("log: ")
	dst, err := AppendFormat(dst, "{}={}", "k", 7)
	if err != nil {
		t.Fatal(err)
	}
	if string(dst) != "log: k=7" {
		t.Fatalf("dst = %q", dst)
	}
}

func TestFormatInto(t *testing.T) {
	var sb strings.Builder
	if err := FormatInto(&sb, "{0}{0}", "ab"); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "abab" {
		t.Fatalf("wrote %q", sb.String())
	}
}

func TestFormatBytesArg(t *testing.T) {
	got, err := Format("{:>6.4}", []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "  payl" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatBigFloat(t *testing.T) {
	f, _, err := new(big.Float).SetPrec(200).Parse("2.5", 10)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Format("{:.3f}", f)
	if err != nil {
		t.Fatal(err)
	}
	if got != "2.500" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatCustomWithSpec(t *testing.T) {
	// The custom formatter owns everything between the colon and the
	// closing brace.
	got, err := Format("[{}]", testCustom{i: 9})
	if err != nil {
		t.Fatal(err)
	}
	if got != "[cust=9]" {
		t.Fatalf("got %q", got)
	}
}

func TestVFormatSharesView(t *testing.T) {
	args := MakeArgs(1, 2, 3)
	for i := 0; i < 3; i++ {
		got, err := VFormat("{0}{1}{2}", args)
		if err != nil {
			t.Fatal(err)
		}
		if got != "123" {
			t.Fatalf("pass %d: got %q", i, got)
		}
	}
}
