// Package state holds the shared, observable application state for albumdeck.
//
// # Overview
//
// One Store is constructed by the app package and handed to every consumer:
// the request clients, the albums service and the UI. It carries four fields:
//
//   - Albums: the album list currently on screen
//   - Errors: validation or server errors from the latest call
//   - Messages: the status message from the latest call (zero or one entry)
//   - WaitingOnAjax: true while a request is outstanding
//
// # Mutation
//
// Fields change only through mutator methods. Each mutator replaces the
// affected field wholesale under the write lock, takes a copy of the new
// state, releases the lock and then notifies subscribers with that copy:
//
//	store.SetError("bad input")   → Errors = ["bad input"]
//	store.SetErrors([]string{..}) → Errors = the given slice (copied)
//	store.SetMessages("saved")    → Messages = ["saved"]
//	store.ClearErrors()           → Errors = []
//
// # Observation
//
// Subscribe registers a callback that runs after mutations, in subscription
// order, outside the store lock. Every mutation takes a version number and
// delivery is ordered by it: a snapshot older than one already queued is
// dropped, so a subscriber's last snapshot always equals Snapshot once
// writers go quiet. Callbacks may read and even mutate the store. The UI
// bridges callbacks into Bubble Tea messages with Program.Send.
//
// # Call sequencing
//
// Requests do not lock each other out. Instead BeginCall hands out an
// increasing token and the latest token wins:
//
//   - BeginCall clears Errors and Messages and raises WaitingOnAjax
//   - CompleteCall lowers WaitingOnAjax and applies the reply's errors and
//     message in one step, only for the latest token
//   - FinishCall is CompleteCall with nothing to apply, for failed calls
//   - IsCurrent reports whether a token is still the latest
//
// An older call that completes after a newer one began is therefore
// invisible in the store, and the flag stays raised until the newest call
// finishes.
package state
