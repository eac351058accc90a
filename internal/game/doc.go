// Package game implements the session engine for a four-seat bluffing card game.
//
// Players take turns playing cards face down while claiming they all match the
// table's claimed rank. The player holding the turn may instead challenge the
// previous play: the cards are revealed after a short suspense delay and whoever
// was wrong takes a strike. Each player secretly draws an elimination threshold
// between 1 and 6; reaching it eliminates them. The last player left holding the
// turn has won.
//
// # Architecture
//
// Session is the state machine. It is deliberately not safe for concurrent use:
// every event handler and every delayed resolution must run on one goroutine.
// Room provides that goroutine. It queues inbound events, runs them in arrival
// order and turns delayed work scheduled through the Scheduler interface into
// queued closures driven by a quartz.Clock, so tests can advance time by hand.
//
// All randomness is read from a single Source, normally a sequence.Generator.
// The order of draws is fixed: the opening claimed rank when the session is
// created, then per join the deck reordering followed by the threshold, then one
// threshold per seat at game start, then one claimed rank per resolved reveal.
//
// Delayed work is keyed by an epoch that changes whenever the turn moves or a
// reveal resolves. A turn advance scheduled under an older epoch is dropped when
// it fires.
package game
