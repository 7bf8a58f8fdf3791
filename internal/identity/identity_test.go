package identity

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		synthetic bool
		wantErr   bool
	}{
		{"durable uuid", "2f5b7a1c-8f44-4f74-9e05-a3d2cb6f0b11", false, false},
		{"durable uuid with synthetic gate on", "2f5b7a1c-8f44-4f74-9e05-a3d2cb6f0b11", true, false},
		{"synthetic accepted when gated on", "tg-2", true, false},
		{"synthetic rejected when gated off", "tg-2", false, true},
		{"synthetic four digits", "tg-1042", true, false},
		{"synthetic too long", "tg-12345", true, true},
		{"empty", "", true, true},
		{"script injection", "<script>", true, true},
		{"random word", "alice", true, true},
		{"synthetic missing number", "tg-", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validator{AllowSynthetic: tt.synthetic}
			err := v.Validate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePairRejectsSelf(t *testing.T) {
	v := Validator{AllowSynthetic: true}
	if err := v.ValidatePair("tg-1", "tg-1"); err == nil {
		t.Fatal("expected error for identical sender and recipient")
	}
	if err := v.ValidatePair("tg-1", "tg-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
