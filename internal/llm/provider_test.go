package llm

import "testing"

func TestSelectProviderChain(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProviderConfig
		want string // provider name, "" means nil
	}{
		{
			name: "groq preferred and keyed",
			cfg:  ProviderConfig{GroqAPIKey: "gk", CerebrasAPIKey: "ck", Default: "groq"},
			want: "groq",
		},
		{
			name: "groq keyed with no alternative",
			cfg:  ProviderConfig{GroqAPIKey: "gk", Default: "gemini"},
			want: "groq",
		},
		{
			name: "cerebras default beats keyed groq",
			cfg:  ProviderConfig{GroqAPIKey: "gk", CerebrasAPIKey: "ck", Default: "cerebras"},
			want: "cerebras",
		},
		{
			name: "gemini default",
			cfg:  ProviderConfig{GoogleAPIKey: "ak", Default: "gemini"},
			want: "gemini",
		},
		{
			name: "gemini default without key",
			cfg:  ProviderConfig{Default: "gemini"},
			want: "",
		},
		{
			name: "nothing configured",
			cfg:  ProviderConfig{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Select(tt.cfg)
			if tt.want == "" {
				if p != nil {
					t.Fatalf("expected no provider, got %s", p.Name())
				}
				return
			}
			if p == nil {
				t.Fatalf("expected provider %s, got nil", tt.want)
			}
			if p.Name() != tt.want {
				t.Errorf("Select() = %s, want %s", p.Name(), tt.want)
			}
		})
	}
}
