package codec

import "testing"

func TestG711Tables(t *testing.T) {
	tests := []struct {
		name  string
		table *[256]int16
		in    byte
		want  int16
	}{
		{"mu-law positive zero", &muLawTable, 0xFF, 0},
		{"mu-law negative zero", &muLawTable, 0x7F, 0},
		{"mu-law positive peak", &muLawTable, 0x80, 32124},
		{"mu-law negative peak", &muLawTable, 0x00, -32124},
		{"a-law smallest positive", &aLawTable, 0xD5, 8},
		{"a-law smallest negative", &aLawTable, 0x55, -8},
		{"a-law positive peak", &aLawTable, 0xAA, 32256},
		{"a-law negative peak", &aLawTable, 0x2A, -32256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.table[tt.in]; got != tt.want {
				t.Fatalf("table[0x%02X]=%d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestG711TablesAreOddSymmetric(t *testing.T) {
	for i := range 128 {
		if muLawTable[i] != -muLawTable[i|0x80] {
			t.Fatalf("mu-law 0x%02X=%d is not the negation of 0x%02X=%d", i, muLawTable[i], i|0x80, muLawTable[i|0x80])
		}

		if aLawTable[i] != -aLawTable[i|0x80] {
			t.Fatalf("a-law 0x%02X=%d is not the negation of 0x%02X=%d", i, aLawTable[i], i|0x80, aLawTable[i|0x80])
		}
	}
}
