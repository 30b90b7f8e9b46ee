package dumper

import (
	"testing"
)

func TestMaskers(t *testing.T) {
	tests := []struct {
		mask  MaskType
		input string
		want  string
	}{
		{MaskSSN, "123-45-6789", "***-**-6789"},
		{MaskSSN, "123456789", "***-**-6789"},
		{MaskSSN, "123", "***"},
		{MaskEmail, "alice@example.com", "a***@example.com"},
		{MaskEmail, "a@b.com", "a***@b.com"},
		{MaskEmail, "noatsign", "********"},
		{MaskEmail, "@example.com", "************"},
		{MaskPhone, "(555) 123-4567", "(***) ***-4567"},
		{MaskPhone, "555-123-4567", "***-***-4567"},
		{MaskPhone, "1234567", "***-4567"},
		{MaskPhone, "12", "**"},
		{MaskCard, "4111111111111111", "************1111"},
		{MaskCard, "4111 1111 1111 1111", "**** **** **** 1111"},
		{MaskCard, "4111-1111-1111-1111", "****-****-****-1111"},
		{MaskIP, "192.168.1.100", "192.168.xxx.xxx"},
		{MaskIP, "2001:db8::1", "2001:0db8:0000:0000:xxxx:xxxx:xxxx:xxxx"},
		{MaskIP, "bogus", "*****"},
		{MaskUUID, "550e8400-e29b-41d4-a716-446655440000", "550e8400-****-****-****-************"},
		{MaskUUID, "abc", "***"},
		{MaskIBAN, "GB82WEST12345698765432", "GB82**************5432"},
		{MaskIBAN, "SHORT", "*****"},
		{MaskName, "John Smith", "J*** S****"},
		{MaskName, "Ægir", "Æ***"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mask)+"/"+tt.input, func(t *testing.T) {
			m, ok := MaskerFor(tt.mask)
			if !ok {
				t.Fatalf("MaskerFor(%q) not found", tt.mask)
			}
			if got := m.Mask(tt.input); got != tt.want {
				t.Errorf("Mask(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidMaskType(t *testing.T) {
	for _, mt := range []MaskType{MaskSSN, MaskEmail, MaskPhone, MaskCard, MaskIP, MaskUUID, MaskIBAN, MaskName} {
		if !IsValidMaskType(mt) {
			t.Errorf("IsValidMaskType(%q) = false", mt)
		}
		if _, ok := MaskerFor(mt); !ok {
			t.Errorf("MaskerFor(%q) missing", mt)
		}
	}
	for _, mt := range []MaskType{"Email", "email ", "passport", ""} {
		if IsValidMaskType(mt) {
			t.Errorf("IsValidMaskType(%q) = true", mt)
		}
	}
}

func TestMaskerFunc(t *testing.T) {
	var m Masker = MaskerFunc(func(s string) string { return "<" + s + ">" })
	if got := m.Mask("x"); got != "<x>" {
		t.Errorf("Mask() = %q, want <x>", got)
	}
}
