// Package store publishes the current flow of a document to its subscribers.
//
// A [Graph] owns one [history.Manager]. Collaborators change the document
// only by dispatching actions:
//
//	g, err := store.New(flow.New(props))
//	unsubscribe := g.Subscribe(func(m *flow.Model) { redraw(m) })
//	defer unsubscribe()
//	err = g.Dispatch(action.AddElement{...})
//
// Dispatch is synchronous. Listeners run in subscription order after the
// new state is committed, and only when the state pointer changed. A
// listener that panics is logged and skipped.
//
// # Decorators
//
// [WithAssertions] and [WithLogging] wrap any [Store] and return a Store, so
// debug checks and logging are composed explicitly at construction:
//
//	var s store.Store = g
//	s = store.WithAssertions(s, store.AssertOptions{RoundTrip: true, Logger: logger})
//	s = store.WithLogging(s, logger)
package store
