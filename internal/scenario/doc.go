// Package scenario loads TOML descriptions of a scorched-earth channel run,
// encodes every turn and replays them through a channel ledger, comparing
// each refusal reason with the one the file expects.
package scenario
