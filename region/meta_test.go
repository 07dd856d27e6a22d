package region

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestMetaEmitAndBytes(t *testing.T) {
	r := NewMetaRegion()
	if err := r.Emit("name", "Example"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := r.Emit("author", "someone <dev@example.org>"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	want := []byte("name=Example\x00author=someone <dev@example.org>\x00")
	if got := r.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}
}

func TestMetaEmitEmptyValue(t *testing.T) {
	r := NewMetaRegion()
	if err := r.Emit("description", ""); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if got, want := r.Bytes(), []byte("description=\x00"); !bytes.Equal(got, want) {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}
}

func TestMetaEmitValidation(t *testing.T) {
	tests := []struct {
		testName string
		name     string
		value    string
		wantErr  error
	}{
		{"empty name", "", "v", ErrMetaName},
		{"upper case name", "Name", "v", ErrMetaName},
		{"name with equals", "na=me", "v", ErrMetaName},
		{"name with space", "na me", "v", ErrMetaName},
		{"leading digit", "0name", "v", ErrMetaName},
		{"name too long", strings.Repeat("a", MaxMetaNameLen+1), "v", ErrMetaTooLong},
		{"value too long", "name", strings.Repeat("v", MaxMetaValueLen+1), ErrMetaTooLong},
		{"value with nul", "name", "a\x00b", ErrMetaNulByte},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			r := NewMetaRegion()
			if err := r.Emit(tt.name, tt.value); !errors.Is(err, tt.wantErr) {
				t.Errorf("Emit(%q, %q) error = %v, want %v", tt.name, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestMetaEmitAfterSeal(t *testing.T) {
	r := NewMetaRegion()
	if err := r.Emit("name", "Example"); err != nil {
		t.Fatal(err)
	}
	r.Seal()
	if err := r.Emit("version", "1.0.0"); !errors.Is(err, ErrSealed) {
		t.Errorf("Emit() after Seal error = %v, want ErrSealed", err)
	}
	if n := len(r.Records()); n != 1 {
		t.Errorf("len(Records()) = %d, want 1", n)
	}
}

func TestParseMetadataRoundTrip(t *testing.T) {
	r := NewMetaRegion()
	r.MustEmit("name", "Example")
	r.MustEmit("version", "1.2.3")
	r.MustEmit("description", "")

	recs, err := ParseMetadata(r.Bytes())
	if err != nil {
		t.Fatalf("ParseMetadata() error = %v", err)
	}
	want := []MetaRecord{
		{Name: "name", Value: "Example"},
		{Name: "version", Value: "1.2.3"},
		{Name: "description", Value: ""},
	}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, recs[i], want[i])
		}
	}
}

func TestParseMetadataValueWithEquals(t *testing.T) {
	recs, err := ParseMetadata([]byte("author=a=b\x00"))
	if err != nil {
		t.Fatalf("ParseMetadata() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Value != "a=b" {
		t.Errorf("ParseMetadata() = %+v, want value %q", recs, "a=b")
	}
}

func TestParseMetadataMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unterminated record", "name=Example"},
		{"missing equals", "nameonly\x00"},
		{"empty name", "=value\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMetadata([]byte(tt.data)); err == nil {
				t.Errorf("ParseMetadata(%q) = nil error, want error", tt.data)
			}
		})
	}
}

func TestMustEmitPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustEmit() with bad name did not panic")
		}
	}()
	NewMetaRegion().MustEmit("Bad Name", "v")
}
