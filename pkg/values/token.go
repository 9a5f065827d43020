package values

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// TokenSource defines where to resolve the Vault token from.
type TokenSource string

const (
	TokenSourceAuto   TokenSource = "auto"
	TokenSourceEnv    TokenSource = "env"
	TokenSourceFile   TokenSource = "file"
	TokenSourceLookup TokenSource = "lookup"
)

// ResolveToken resolves a Vault token using the requested source strategy.
// For Auto the order is: explicit/env -> file -> CLI lookup.
func ResolveToken(ctx context.Context, explicitToken string, source TokenSource, tokenFilePath string) (string, error) {
	if source == "" {
		source = TokenSourceAuto
	}
	tokenFilePath = expandHome(tokenFilePath)

	switch source {
	case TokenSourceEnv:
		if explicitToken != "" {
			return explicitToken, nil
		}
		if t := os.Getenv("VAULT_TOKEN"); t != "" {
			return t, nil
		}
		return "", fmt.Errorf("no token found in environment")

	case TokenSourceFile:
		if tokenFilePath == "" {
			if home, err := os.UserHomeDir(); err == nil {
				tokenFilePath = filepath.Join(home, ".vault-token")
			}
		}
		data, err := os.ReadFile(tokenFilePath)
		if err != nil {
			return "", fmt.Errorf("failed to read token file %s: %w", tokenFilePath, err)
		}
		return strings.TrimSpace(string(data)), nil

	case TokenSourceLookup:
		return lookupTokenViaCLI(ctx)

	case TokenSourceAuto:
		if explicitToken != "" {
			return explicitToken, nil
		}
		if t := os.Getenv("VAULT_TOKEN"); t != "" {
			return t, nil
		}
		if token, err := ResolveToken(ctx, "", TokenSourceFile, tokenFilePath); err == nil && token != "" {
			return token, nil
		}
		if token, err := ResolveToken(ctx, "", TokenSourceLookup, tokenFilePath); err == nil && token != "" {
			return token, nil
		}
		return "", fmt.Errorf("unable to resolve Vault token (tried env, file, lookup)")
	}

	return "", fmt.Errorf("unknown token source: %s", source)
}

// lookupTokenViaCLI runs `vault token lookup -format=json` and extracts .data.id.
func lookupTokenViaCLI(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "vault", "token", "lookup", "-format=json")
	cmd.Env = os.Environ()
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to execute 'vault token lookup': %w", err)
	}

	var payload struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return "", fmt.Errorf("failed to parse lookup output: %w", err)
	}
	if payload.Data == nil {
		return "", fmt.Errorf("lookup output missing data")
	}
	if idVal, ok := payload.Data["id"]; ok {
		if idStr, ok := idVal.(string); ok && idStr != "" {
			return idStr, nil
		}
	}
	return "", fmt.Errorf("could not extract token id from lookup output")
}
