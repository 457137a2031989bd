package argon2

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	xargon2 "golang.org/x/crypto/argon2"
)

// RFC 9106 §5.3: Argon2id with secret and associated data.
func TestKey_RFC9106Vector(t *testing.T) {
	x, err := New(bytes.Repeat([]byte{0x03}, 8), Params{Time: 3, Memory: 32, Threads: 4, KeyLen: 32})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := x.KeyWithData(
		bytes.Repeat([]byte{0x01}, 32),
		bytes.Repeat([]byte{0x02}, 16),
		bytes.Repeat([]byte{0x04}, 12),
	)
	if err != nil {
		t.Fatalf("KeyWithData: %v", err)
	}
	want := "0d640df58d78766c08c037a34a8b53c9d01ef0452d75b65eb52520e96b01e659"
	if hex.EncodeToString(got) != want {
		t.Errorf("tag = %x, want %s", got, want)
	}
}

func TestKey_KeyedDefaultCost(t *testing.T) {
	x, err := New([]byte("site-secret"), Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := x.Key([]byte("correct horse battery staple"), []byte("saltsaltsaltsalt"))
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	want := "1a61f619c8d752c3f5d18fa1c0862d4247c7e7757f16f0b7432e5723e03c6f8c"
	if hex.EncodeToString(got) != want {
		t.Errorf("key = %x, want %s", got, want)
	}
}

// RFC 9106 §5.1 and §5.2: the same inputs under Argon2d and Argon2i.
func TestKey_RFC9106Variants(t *testing.T) {
	tests := []struct {
		variant Variant
		want    string
	}{
		{Argon2d, "512b391b6f1162975371d30919734294f868e3be3984f3c1a13a4db9fabe4acb"},
		{Argon2i, "c814d9d1dc7f37aa13f0d77f2494bda1c8de6b016dd388d29952a4c4672b6ce8"},
		{Argon2id, "0d640df58d78766c08c037a34a8b53c9d01ef0452d75b65eb52520e96b01e659"},
	}
	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			x, err := New(bytes.Repeat([]byte{0x03}, 8), Params{Time: 3, Memory: 32, Threads: 4, KeyLen: 32, Variant: tt.variant})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, err := x.KeyWithData(
				bytes.Repeat([]byte{0x01}, 32),
				bytes.Repeat([]byte{0x02}, 16),
				bytes.Repeat([]byte{0x04}, 12),
			)
			if err != nil {
				t.Fatalf("KeyWithData: %v", err)
			}
			if hex.EncodeToString(got) != tt.want {
				t.Errorf("tag = %x, want %s", got, tt.want)
			}
		})
	}
}

// Version 0x10 vectors from the Argon2 reference implementation's test suite.
func TestKey_Version10(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want string
	}{
		{"one lane", Params{Time: 2, Memory: 256, Threads: 1, KeyLen: 32, Variant: Argon2i, Version: Version10},
			"fd4dd83d762c49bdeaf57c47bdcd0c2f1babf863fdeb490df63ede9975fccf06"},
		{"two lanes", Params{Time: 2, Memory: 256, Threads: 2, KeyLen: 32, Variant: Argon2i, Version: Version10},
			"b6c11560a6a9d61eac706b79a2f97d68b4463aa3ad87e00c07e2b01e90c564fb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := New(nil, tt.p)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, err := x.Key([]byte("password"), []byte("somesalt"))
			if err != nil {
				t.Fatalf("Key: %v", err)
			}
			if hex.EncodeToString(got) != tt.want {
				t.Errorf("key = %x, want %s", got, tt.want)
			}
		})
	}
}

func TestKey_VersionChangesOutput(t *testing.T) {
	p := Params{Time: 2, Memory: 64, Threads: 1, KeyLen: 32}
	a, _ := New(nil, p)
	p.Version = Version10
	b, _ := New(nil, p)
	ka, _ := a.Key([]byte("password"), []byte("saltsalt"))
	kb, _ := b.Key([]byte("password"), []byte("saltsalt"))
	if bytes.Equal(ka, kb) {
		t.Error("versions 0x10 and 0x13 produced the same key")
	}
}

// With no secret Argon2i must match x/crypto's unkeyed Key.
func TestKey_MatchesUnkeyedArgon2i(t *testing.T) {
	p := Params{Time: 3, Memory: 64, Threads: 2, KeyLen: 32, Variant: Argon2i}
	password := []byte("correct horse battery staple")
	salt := []byte("saltsaltsaltsalt")
	x, err := New(nil, p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := x.Key(password, salt)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	want := xargon2.Key(password, salt, p.Time, p.Memory, uint8(p.Threads), p.KeyLen)
	if !bytes.Equal(got, want) {
		t.Errorf("key = %x, want %x", got, want)
	}
}

func TestParseVariant(t *testing.T) {
	for _, v := range []Variant{Argon2id, Argon2i, Argon2d} {
		got, ok := ParseVariant(v.String())
		if !ok || got != v {
			t.Errorf("ParseVariant(%q) = %v, %v", v.String(), got, ok)
		}
	}
	if _, ok := ParseVariant("argon2x"); ok {
		t.Error("argon2x must not parse")
	}
}

// With no secret the output must match x/crypto's unkeyed Argon2id.
func TestKey_MatchesUnkeyedIDKey(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"minimum", Params{Time: 1, Memory: 8, Threads: 1, KeyLen: 4}},
		{"two lanes", Params{Time: 2, Memory: 64, Threads: 2, KeyLen: 16}},
		{"unrounded memory", Params{Time: 1, Memory: 101, Threads: 3, KeyLen: 32}},
		{"several address blocks", Params{Time: 1, Memory: 2048, Threads: 1, KeyLen: 32}},
		{"long output", Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 100}},
	}
	password := []byte("correct horse battery staple")
	salt := []byte("saltsaltsaltsalt")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := New(nil, tt.p)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, err := x.Key(password, salt)
			if err != nil {
				t.Fatalf("Key: %v", err)
			}
			want := xargon2.IDKey(password, salt, tt.p.Time, tt.p.Memory, uint8(tt.p.Threads), tt.p.KeyLen)
			if !bytes.Equal(got, want) {
				t.Errorf("key = %x, want %x", got, want)
			}
		})
	}
}

func TestKey_SecretChangesOutput(t *testing.T) {
	p := Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 32}
	a, _ := New([]byte("pepper-a"), p)
	b, _ := New([]byte("pepper-b"), p)
	ka, _ := a.Key([]byte("password"), []byte("saltsalt"))
	kb, _ := b.Key([]byte("password"), []byte("saltsalt"))
	if bytes.Equal(ka, kb) {
		t.Error("different secrets produced the same key")
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want error
	}{
		{"valid", Params{Time: 1, Memory: 8, Threads: 1, KeyLen: 4}, nil},
		{"time=0", Params{Time: 0, Memory: 8, Threads: 1, KeyLen: 4}, ErrTimeCost},
		{"threads=0", Params{Time: 1, Memory: 8, Threads: 0, KeyLen: 4}, ErrThreads},
		{"threads too high", Params{Time: 1, Memory: 1 << 31, Threads: MaxThreads + 1, KeyLen: 4}, ErrThreads},
		{"memory < 8×threads", Params{Time: 1, Memory: 15, Threads: 2, KeyLen: 4}, ErrMemoryCost},
		{"key_len<4", Params{Time: 1, Memory: 8, Threads: 1, KeyLen: 3}, ErrKeyLen},
		{"version 0x10", Params{Time: 1, Memory: 8, Threads: 1, KeyLen: 4, Version: Version10}, nil},
		{"version 0x11", Params{Time: 1, Memory: 8, Threads: 1, KeyLen: 4, Version: 0x11}, ErrVersion},
		{"unknown variant", Params{Time: 1, Memory: 8, Threads: 1, KeyLen: 4, Variant: Argon2d + 1}, ErrVariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
			if _, err := New(nil, tt.p); !errors.Is(err, tt.want) {
				t.Errorf("New() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParams_Blocks(t *testing.T) {
	p := Params{Time: 1, Memory: 101, Threads: 3, KeyLen: 32}
	if got := p.Blocks(); got != 96 {
		t.Errorf("Blocks() = %d, want 96", got)
	}
	if got := (Params{}).Blocks(); got != 0 {
		t.Errorf("zero Params Blocks() = %d, want 0", got)
	}
}

func TestKey_SaltTooShort(t *testing.T) {
	x, _ := New(nil, Params{Time: 1, Memory: 8, Threads: 1, KeyLen: 16})
	if _, err := x.Key([]byte("pw"), []byte("short")); !errors.Is(err, ErrSaltTooShort) {
		t.Errorf("expected ErrSaltTooShort, got %v", err)
	}
}

func TestLengthOK(t *testing.T) {
	if !lengthOK(maxInputLen) {
		t.Error("maxInputLen must be accepted")
	}
	if lengthOK(maxInputLen + 1) {
		t.Error("lengths above 2^32-1 must be rejected")
	}
}
