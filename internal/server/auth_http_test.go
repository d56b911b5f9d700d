package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireHTTPSOrLoopback(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https", url: "https://evalgate.example.com"},
		{name: "localhost http", url: "http://localhost:8080"},
		{name: "loopback ipv4 http", url: "http://127.0.0.1:8080"},
		{name: "loopback ipv6 http", url: "http://[::1]:8080"},
		{name: "public http", url: "http://example.com", wantErr: true},
		{name: "empty", url: "", wantErr: true},
		{name: "ftp", url: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := requireHTTPSOrLoopback(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthConfigValidate(t *testing.T) {
	valid := AuthConfig{
		PublicURL:    "https://evalgate.example.com",
		IssuerURL:    "https://dex.example.com",
		ClientID:     "evalgate",
		ClientSecret: "secret",
	}
	assert.NoError(t, valid.validate())

	missingIssuer := valid
	missingIssuer.IssuerURL = ""
	assert.Error(t, missingIssuer.validate())

	missingClient := valid
	missingClient.ClientID = ""
	assert.Error(t, missingClient.validate())

	missingSecret := valid
	missingSecret.ClientSecret = ""
	assert.Error(t, missingSecret.validate())

	badURL := valid
	badURL.PublicURL = "http://public.example.com"
	assert.Error(t, badURL.validate())
}
