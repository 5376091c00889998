package config

import (
	"testing"
)

func TestParseICEServersJSONStringURL(t *testing.T) {
	servers, err := ParseICEServersJSON(`[{"urls": "stun:stun.l.google.com:19302"}]`)
	if err != nil {
		t.Fatalf("ParseICEServersJSON: %v", err)
	}
	if len(servers) != 1 {
		t.Fatalf("got %d servers, want 1", len(servers))
	}
	if len(servers[0].URLs) != 1 || servers[0].URLs[0] != "stun:stun.l.google.com:19302" {
		t.Fatalf("URLs=%v", servers[0].URLs)
	}
}

func TestParseICEServersJSONSliceURLsWithTurn(t *testing.T) {
	servers, err := ParseICEServersJSON(`[
		{"urls": ["stun:stun.example.com:3478"]},
		{"urls": ["turn:turn.example.com:3478", "turns:turn.example.com:5349"], "username": "u", "credential": "p"}
	]`)
	if err != nil {
		t.Fatalf("ParseICEServersJSON: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("got %d servers, want 2", len(servers))
	}
	if servers[1].Username != "u" {
		t.Fatalf("Username=%q, want %q", servers[1].Username, "u")
	}
	cred, ok := servers[1].Credential.(string)
	if !ok || cred != "p" {
		t.Fatalf("Credential=%v", servers[1].Credential)
	}
}

func TestParseICEServersJSONRejectsTurnWithoutCredentials(t *testing.T) {
	_, err := ParseICEServersJSON(`[{"urls": ["turn:turn.example.com:3478"]}]`)
	if err == nil {
		t.Fatalf("expected error for turn url without credentials")
	}
}

func TestParseICEServersJSONRejectsUnknownScheme(t *testing.T) {
	_, err := ParseICEServersJSON(`[{"urls": ["https://example.com"]}]`)
	if err == nil {
		t.Fatalf("expected error for non-ICE url scheme")
	}
}

func TestParseICEServersJSONRejectsMissingURLs(t *testing.T) {
	_, err := ParseICEServersJSON(`[{"username": "u"}]`)
	if err == nil {
		t.Fatalf("expected error for server without urls")
	}
}

func TestConvenienceEnvStunOnly(t *testing.T) {
	servers, err := parseICEServersFromConvenienceEnv("stun:a.example.com:3478, stun:b.example.com:3478", "", "", "")
	if err != nil {
		t.Fatalf("parseICEServersFromConvenienceEnv: %v", err)
	}
	if len(servers) != 1 {
		t.Fatalf("got %d servers, want 1", len(servers))
	}
	if len(servers[0].URLs) != 2 {
		t.Fatalf("URLs=%v, want 2 entries", servers[0].URLs)
	}
}

func TestConvenienceEnvTurnRequiresBothCredentials(t *testing.T) {
	_, err := parseICEServersFromConvenienceEnv("", "turn:turn.example.com:3478", "u", "")
	if err == nil {
		t.Fatalf("expected error when turn credential is missing")
	}
}

func TestConvenienceEnvStunAndTurn(t *testing.T) {
	servers, err := parseICEServersFromConvenienceEnv("stun:stun.example.com:3478", "turn:turn.example.com:3478", "u", "p")
	if err != nil {
		t.Fatalf("parseICEServersFromConvenienceEnv: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("got %d servers, want 2", len(servers))
	}
}

func TestICEServersJSONEnvTakesPrecedence(t *testing.T) {
	cfg, err := load(lookupMap(map[string]string{
		envICEServersJSON: `[{"urls": "stun:json.example.com:3478"}]`,
		envStunURLs:       "stun:ignored.example.com:3478",
	}), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.ICEServers) != 1 || cfg.ICEServers[0].URLs[0] != "stun:json.example.com:3478" {
		t.Fatalf("ICEServers=%v", cfg.ICEServers)
	}
}
