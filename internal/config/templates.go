package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "referee":
		return refereeTemplate, nil
	case "scenario":
		return scenarioTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const refereeTemplate = `id = "referee"
addr = ":9200"
base_path = ""
cors_origins = ["http://localhost:3000"]
trusted_proxies = ["127.0.0.1", "::1"]
max_channels = 1024
shutdown_timeout = "5s"
log_profile = "runtime"

# Bearer token required on channel mutations; empty leaves them open.
api_token = ""

# Serve HTTPS when both are set. Relative paths resolve against this file.
# tls_cert_file = "referee.crt"
# tls_key_file = "referee.key"
`

const scenarioTemplate = `name = "reward-round"
opening_turn = 0

[params]
payment = 5
user_burn = 2
suggester_burn = 2

[roles]
suggester = "0x2222222222222222222222222222222222222222"
user = "0x1111111111111111111111111111111111111111"
burner = "0x000000000000000000000000000000000000dEaD"

[opening]
phase = "react"
reaction = "reward"
balances = { suggester = 100, user = 100, burner = 0 }

[[turns]]
phase = "suggest"
suggestion = "buy ETH"
balances = { suggester = 98, user = 93, burner = 9 }

[[turns]]
phase = "react"
reaction = "reward"
balances = { suggester = 103, user = 88, burner = 9 }
`
