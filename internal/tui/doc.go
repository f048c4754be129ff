// Package tui implements the interactive customer screen.
//
// The screen is a Bubble Tea program with a single Model: a header with the
// customer count, the customer table, and an add-customer dialog drawn as
// a modal on top. Remote data comes from a store.Store that the Model
// mounts in Init; store changes reach the program through a channel that
// is re-armed after every message, so the Bubble Tea loop remains the only
// goroutine touching view state.
//
// # Dialog flow
//
// Flow is the dialog state machine. Opening the dialog starts an empty
// draft; the Create button stays disabled until first name, last name and
// email are non-blank. A successful create refetches the list, closes the
// dialog, resets the draft and shows a notice for a few seconds. A failed
// create keeps the dialog and the draft and shows a blocking notice with
// the backend message.
//
// # Keys
//
//	a          open the add-customer dialog
//	r          refetch the list
//	q, ctrl+c  quit
//	tab        next field (shift+tab previous)
//	enter      create (also ctrl+s)
//	esc        cancel the dialog
//
// # Usage Example
//
//	m, err := tui.NewModel(tui.Options{Client: api.NewClient(url)})
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
package tui
