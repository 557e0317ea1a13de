// Package scorched validates turn transitions of the scorched-earth
// suggestion game.
//
// A transition is checked in a fixed order and the first failing rule is
// reported:
//
//  1. shape: one asset, three allocation items
//  2. destinations: every role keeps its destination
//  3. phase: strict Suggest/React alternation, per-phase content, fixed params
//  4. conservation: amounts move exactly as the move dictates
//
// Validation is pure and safe for concurrent use.
package scorched
