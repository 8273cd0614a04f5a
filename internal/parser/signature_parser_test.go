package parser

import (
	"errors"
	"math/big"
	"testing"
)

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord("Bob -> Alice: (1234567890123456789012345678901234567890, 0x1f, None)")
	if err != nil {
		t.Fatalf("Failed to parse record: %v", err)
	}
	if rec.Label != "Bob -> Alice" {
		t.Errorf("Label = %q", rec.Label)
	}
	if len(rec.Values) != 3 {
		t.Fatalf("Expected 3 values, got %d", len(rec.Values))
	}

	want, _ := new(big.Int).SetString("1234567890123456789012345678901234567890", 10)
	if rec.Values[0].Kind != KindInt || rec.Values[0].Int.Cmp(want) != 0 {
		t.Errorf("Value 0 = %v", rec.Values[0])
	}
	if rec.Values[1].Kind != KindInt || rec.Values[1].Int.Int64() != 31 {
		t.Errorf("Value 1 = %v", rec.Values[1])
	}
	if rec.Values[2].Kind != KindNone {
		t.Errorf("Value 2 kind = %s, want None", rec.Values[2].Kind)
	}
}

func TestParseTuple_Literals(t *testing.T) {
	values, err := ParseTuple(`( -5 , 'it\'s' , b'\x00\xffA', "tab\there", 1_000, )`)
	if err != nil {
		t.Fatalf("Failed to parse tuple: %v", err)
	}
	if len(values) != 5 {
		t.Fatalf("Expected 5 values, got %d", len(values))
	}
	if values[0].Int.Int64() != -5 {
		t.Errorf("Value 0 = %s", values[0].Int)
	}
	if values[1].Kind != KindString || values[1].Str != "it's" {
		t.Errorf("Value 1 = %q", values[1].Str)
	}
	if values[2].Kind != KindBytes || string(values[2].Bytes) != "\x00\xffA" {
		t.Errorf("Value 2 = %x", values[2].Bytes)
	}
	if values[3].Str != "tab\there" {
		t.Errorf("Value 3 = %q", values[3].Str)
	}
	if values[4].Int.Int64() != 1000 {
		t.Errorf("Value 4 = %s", values[4].Int)
	}
}

func TestParseTuple_ZeroPrefixes(t *testing.T) {
	values, err := ParseTuple("(0, 00, 0_0, 0o17, 0b101, 0x0A)")
	if err != nil {
		t.Fatalf("Failed to parse tuple: %v", err)
	}
	want := []int64{0, 0, 0, 15, 5, 10}
	if len(values) != len(want) {
		t.Fatalf("Expected %d values, got %d", len(want), len(values))
	}
	for i, w := range want {
		if values[i].Int.Int64() != w {
			t.Errorf("Value %d = %s, want %d", i, values[i].Int, w)
		}
	}
}

func TestParseTuple_Empty(t *testing.T) {
	values, err := ParseTuple("()")
	if err != nil {
		t.Fatalf("Failed to parse tuple: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Expected no values, got %d", len(values))
	}
}

func TestParseTuple_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"1, 2",
		"(1, 2",
		"(1 2)",
		"(1, 2) extra",
		"(abc)",
		"('open)",
		"(b'\\x4)",
		"(12z)",
		"(0123)",
		"(-007)",
		"(0_1)",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseTuple(in); !errors.Is(err, ErrSyntax) {
				t.Errorf("ParseTuple(%q) error = %v, want ErrSyntax", in, err)
			}
		})
	}
}

func TestSplitRecord_NoSeparator(t *testing.T) {
	if _, _, err := SplitRecord("(1, 2, 3)"); !errors.Is(err, ErrSyntax) {
		t.Errorf("Expected ErrSyntax, got %v", err)
	}
}

func TestParseBigInt(t *testing.T) {
	big512, _ := new(big.Int).SetString("8948962207650232551656602815159153422162609644098354511344597187200057010413552439917934304191956942765446530386427345937963894309923928536070534607816947", 10)

	tests := []struct {
		name string
		in   string
		want *big.Int
	}{
		{"decimal", "12345", big.NewInt(12345)},
		{"long decimal", big512.String(), big512},
		{"hex prefix", "0xff", big.NewInt(255)},
		{"bare hex", "deadbeef", big.NewInt(0xdeadbeef)},
		{"negative", "-3", big.NewInt(-3)},
		{"padded", " 42\n", big.NewInt(42)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBigInt(tt.in)
			if err != nil {
				t.Fatalf("ParseBigInt(%v) error: %v", tt.in, err)
			}
			if got.Cmp(tt.want) != 0 {
				t.Errorf("ParseBigInt(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	if _, err := ParseBigInt("not a number"); err == nil {
		t.Error("Expected error for garbage input")
	}
	if _, err := ParseBigInt("0xzz"); err == nil {
		t.Error("Expected error for bad hex input")
	}
}
