package quill

import "testing"

func TestTypeClassification(t *testing.T) {
	cases := []struct {
		typ        Type
		integral   bool
		arithmetic bool
	}{
		{TypeNone, false, false},
		{TypeInt, true, true},
		{TypeUint, true, true},
		{TypeInt64, true, true},
		{TypeUint64, true, true},
		{TypeBool, true, true},
		{TypeChar, true, true},
		{TypeFloat64, false, true},
		{TypeBigFloat, false, true},
		{TypeBytes, false, false},
		{TypeString, false, false},
		{TypePointer, false, false},
		{TypeCustom, false, false},
	}
	for _, tc := range cases {
		if got := tc.typ.IsIntegral(); got != tc.integral {
			t.Errorf("%s: IsIntegral = %v, want %v", tc.typ, got, tc.integral)
		}
		if got := tc.typ.IsArithmetic(); got != tc.arithmetic {
			t.Errorf("%s: IsArithmetic = %v, want %v", tc.typ, got, tc.arithmetic)
		}
	}
}

func TestClassifyNamedArgPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("classifying a named-argument marker did not panic")
		}
	}()
	TypeNamedArg.IsIntegral()
}

func TestPackTypesRoundTrip(t *testing.T) {
	// Cycle through tags so each arity from 0 to 14 exercises different
	// slot positions.
	samples := []any{int64(1), uint64(2), "three", []byte("four"), true, 1.5, Char('c')}
	for n := 0; n < MaxPackedArgs; n++ {
		args := make([]Arg, n)
		for i := range args {
			args[i] = argOf(samples[i%len(samples)])
		}
		word := packTypes(args)
		for i := range args {
			if got := typeAt(word, i); got != args[i].typ {
				t.Fatalf("arity %d slot %d: decoded %s, want %s", n, i, got, args[i].typ)
			}
		}
		for i := n; i < MaxPackedArgs; i++ {
			if got := typeAt(word, i); got != TypeNone {
				t.Fatalf("arity %d slot %d: decoded %s, want none terminator", n, i, got)
			}
		}
	}
}

func TestTypeString(t *testing.T) {
	if TypeBigFloat.String() != "bigfloat" {
		t.Fatalf("unexpected name: %s", TypeBigFloat)
	}
	if Type(200).String() != "invalid" {
		t.Fatalf("out-of-range tag should stringify as invalid")
	}
}
