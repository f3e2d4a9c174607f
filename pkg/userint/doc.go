// Package userint implements the widget interaction state machine: a tree of docked widgets,
// their parts and items, and the per-tick protocol that resolves pointer input into at most
// one chosen widget and an ordered sequence of lifecycle events.
//
// A host drives a State with two calls:
//
//	state.PropagateSignal(pressed) // once per input sample
//	state.Update()                 // once per frame
//
// PropagateSignal tests the frame front to back. Within a framed widget the dock is tested
// depth first before the widget itself, so the innermost frontmost widget that calls Signal
// wins and testing stops there. The winner is then reconciled with the previous choice:
// the old choice receives upkeep (leave, enter, grab, drop, and possibly abandon) and, if it
// was abandoned, the new signal is chosen.
//
// Structural changes are refused while the protocol is running inside the callbacks it
// invokes. Refusals are returned as errors that can be recognized with IsWrongMode and are
// safe to retry once the State is back in ModeNormal.
package userint
