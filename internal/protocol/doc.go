// Package protocol owns the state-channel wire contract shared by the game
// packages.
//
// Ownership boundary:
// - variable part (encoded outcome + encoded app data) of a channel state
// - hex transport helpers and keccak digests
// - decoding sentinel errors
//
// Outcome and app-data codecs live in the outcome and appdata sub-packages.
package protocol
